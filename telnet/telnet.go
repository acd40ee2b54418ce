/*
 * ND100 - TCP listeners for the console and panel ports.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package telnet implements the two TCP listeners of spec.md §6: port
// 5101 (console), which sends a fixed 9-byte telnet negotiation prefix
// on accept and then relays a raw byte stream to/from the guest console
// device, and port 5100 (panel), a minimal line-based status protocol.
//
// Both servers share the accept-loop/shutdown-channel/WaitGroup shape of
// the teacher's telnet.Server (telnet/listener.go in the original), but
// drop its full IAC option-negotiation state machine and its 3270-style
// multiplexer entirely — the ND100 console needs exactly one fixed
// negotiation prefix, not general option negotiation, and there is
// nothing here resembling the teacher's multi-session 3270 multiplexer.
package telnet

import (
	"bufio"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"nd100/device/console"
)

// ConsoleNegotiation is the fixed 9-byte telnet negotiation prefix sent
// to every console client on accept, per spec.md §6: WILL ECHO, WILL
// SUPPRESS-GO-AHEAD, DO option 15 (0x0F).
var ConsoleNegotiation = []byte{0xFF, 0xFB, 0x01, 0xFF, 0xFB, 0x03, 0xFF, 0xFD, 0x0F}

// Server is a single TCP listener with cooperative shutdown, in the
// teacher's accept-loop/shutdown-channel/WaitGroup shape.
type Server struct {
	listener net.Listener
	shutdown chan struct{}
	wg       sync.WaitGroup
}

func listen(port string) (*Server, error) {
	l, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return nil, fmt.Errorf("telnet: listen on port %s: %w", port, err)
	}
	return &Server{listener: l, shutdown: make(chan struct{})}, nil
}

// Stop closes the listener and waits (up to one second) for in-flight
// connections to finish.
func (s *Server) Stop() {
	close(s.shutdown)
	s.listener.Close()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		slog.Warn("telnet: timed out waiting for connections to close on " + s.listener.Addr().String())
	}
}

func (s *Server) acceptLoop(handle func(net.Conn)) {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				return
			default:
				slog.Error("telnet: accept: " + err.Error())
				continue
			}
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			handle(conn)
		}()
	}
}

// ServeConsole starts the port-5101 console listener: each accepted
// connection is sent ConsoleNegotiation, becomes the console device's
// output sink (dev.Sink), and has its input bytes fed to dev.PushInput
// until it closes. Only the most recently accepted connection is live;
// an earlier connection's writes are simply dropped once superseded, and
// dev.Sink being reassigned on each reconnect is the one accepted race
// in this single-client model.
func ServeConsole(port string, dev *console.Device) (*Server, error) {
	s, err := listen(port)
	if err != nil {
		return nil, err
	}
	s.wg.Add(1)
	go s.acceptLoop(func(conn net.Conn) {
		defer conn.Close()
		if _, err := conn.Write(ConsoleNegotiation); err != nil {
			slog.Error("telnet: console negotiation write: " + err.Error())
			return
		}
		dev.Sink = func(b byte) { conn.Write([]byte{b}) }

		buf := make([]byte, 256)
		for {
			n, err := conn.Read(buf)
			for i := 0; i < n; i++ {
				dev.PushInput(buf[i])
			}
			if err != nil {
				return
			}
		}
	})
	return s, nil
}

// StatusFunc, passed to ServePanel, is called once per accepted
// connection and again after every line the client sends; its return
// value is written back as that line's response.
type StatusFunc func() string

// ServePanel starts the port-5100 panel listener: a minimal line-based
// protocol, since spec.md §6 names only the port and not a wire format
// beyond it (recorded as an Open Question in DESIGN.md) — any line the
// client sends (even empty) triggers one status-line reply from fn.
func ServePanel(port string, fn StatusFunc) (*Server, error) {
	s, err := listen(port)
	if err != nil {
		return nil, err
	}
	s.wg.Add(1)
	go s.acceptLoop(func(conn net.Conn) {
		defer conn.Close()
		fmt.Fprintln(conn, fn())
		sc := bufio.NewScanner(conn)
		for sc.Scan() {
			fmt.Fprintln(conn, fn())
		}
	})
	return s, nil
}

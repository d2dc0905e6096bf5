package server

import (
	"errors"
	"fmt"
	"io"
	"net"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/Brownie44l1/staticd/internal/buffer"
	"github.com/Brownie44l1/staticd/internal/mime"
	"github.com/Brownie44l1/staticd/internal/request"
	"github.com/Brownie44l1/staticd/internal/response"
)

var ErrPartialWrite = errors.New("partial write")

// Large enough for any status-only error response
const errorResponseSize = 128

// ServeConn runs exactly one request/response cycle on conn and closes
// it. It never returns an error; every failure ends with the connection
// closed and a log line.
func (s *Server) ServeConn(conn net.Conn) {
	start := time.Now()
	id := Field{"conn_id", uuid.NewString()}

	s.Metrics.ActiveConnections.Add(1)
	defer s.Metrics.ActiveConnections.Add(-1)
	defer conn.Close()

	defer func() {
		if r := recover(); r != nil {
			s.Logger.Error("handler panic", id, Field{"error", r}, Field{"stack", string(debug.Stack())})
			s.Metrics.RecordAbort()
			s.internalError(conn, id)
		}
	}()

	s.Logger.Info("client connected", id, Field{"remote", conn.RemoteAddr().String()})

	req := s.requests.Get()
	defer s.requests.Put(req)

	if s.ReadTimeout > 0 {
		conn.SetReadDeadline(time.Now().Add(s.ReadTimeout))
	}
	n, err := req.ReadOnce(conn)
	if n == 0 {
		if err == nil || errors.Is(err, io.EOF) {
			err = errors.New("connection closed before request")
		}
		s.Logger.Warn("error receiving data from client", id, Field{"error", err})
		s.Metrics.RecordAbort()
		return
	}
	s.Logger.Info("data received", id, Field{"bytes", n})

	resp := s.responses.Get()
	defer s.responses.Put(resp)

	res, err := s.respond(resp, req.Bytes(), id)
	if err != nil {
		s.Logger.Error("response aborted", id, Field{"path", res.File}, Field{"error", err})
		s.Metrics.RecordAbort()
		return
	}

	if s.WriteTimeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(s.WriteTimeout))
	}
	written, err := writeAll(conn, resp.Bytes())
	s.Metrics.BytesSent.Add(int64(written))
	if err != nil {
		s.Logger.Error("error sending response", id, Field{"error", err})
		s.Metrics.RecordAbort()
		return
	}

	duration := time.Since(start)
	s.Metrics.RecordResponse(res.Status, duration)
	s.Logger.Info("response sent",
		id,
		Field{"status", int(res.Status)},
		Field{"path", res.File},
		Field{"bytes", written},
		Field{"duration_ms", duration.Milliseconds()},
	)
}

// respond fills dst with the response to raw. Requests that cannot be
// parsed or decoded get a 400.
func (s *Server) respond(dst *buffer.Buffer, raw []byte, id Field) (response.Result, error) {
	encoded, err := s.parser.ParseRequestLine(raw)
	if err != nil {
		s.Logger.Warn("bad request", id, Field{"error", err})
		return response.Result{Status: response.StatusBadRequest}, response.WriteError(dst, response.StatusBadRequest)
	}

	path, err := request.DecodePath(encoded)
	if err != nil {
		s.Logger.Warn("bad request", id, Field{"path", encoded}, Field{"error", err})
		return response.Result{Status: response.StatusBadRequest, File: encoded}, response.WriteError(dst, response.StatusBadRequest)
	}

	res, err := s.builder.Build(dst, path, mime.TypeByName(path))
	if res.File == "" {
		res.File = path
	}
	return res, err
}

// internalError sends a best-effort 500 after a handler panic
func (s *Server) internalError(conn net.Conn, id Field) {
	resp := buffer.New(errorResponseSize)
	if err := response.WriteError(resp, response.StatusInternalServerError); err != nil {
		return
	}

	if s.WriteTimeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(s.WriteTimeout))
	}
	if _, err := writeAll(conn, resp.Bytes()); err != nil {
		s.Logger.Error("error sending response", id, Field{"error", err})
	}
}

// writeAll keeps writing until all of p is sent or w fails
func writeAll(w io.Writer, p []byte) (int, error) {
	written := 0
	for written < len(p) {
		n, err := w.Write(p[written:])
		written += n
		if err != nil {
			return written, fmt.Errorf("%w: sent %d of %d bytes: %w", ErrPartialWrite, written, len(p), err)
		}
		if n == 0 {
			return written, fmt.Errorf("%w: sent %d of %d bytes: %w", ErrPartialWrite, written, len(p), io.ErrShortWrite)
		}
	}
	return written, nil
}

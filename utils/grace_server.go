package utils

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const (
	serverReadTimeout  = 60 * time.Second
	serverWriteTimeout = 60 * time.Second

	gracefulEnvKey     = "IS_GRACEFUL"
	gracefulEnvPair    = gracefulEnvKey + "=1"
	gracefulListenerFd = 3
)

// GraceServer is an http.Server that shuts down cleanly on SIGTERM and
// restarts in place on SIGUSR2 by passing its listener fd to a forked child.
type GraceServer struct {
	*http.Server

	listener     net.Listener
	isChild      bool
	signalChan   chan os.Signal
	shutdownChan chan struct{}
}

func NewGraceServer(addr string, handler http.Handler) *GraceServer {
	return &GraceServer{
		Server: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  serverReadTimeout,
			WriteTimeout: serverWriteTimeout,
		},
		isChild:      os.Getenv(gracefulEnvKey) != "",
		signalChan:   make(chan os.Signal, 1),
		shutdownChan: make(chan struct{}),
	}
}

// ListenAndServe binds the address (or inherits the parent's listener after a
// graceful restart) and serves until shutdown finishes.
func (srv *GraceServer) ListenAndServe() error {
	ln, err := srv.acquireListener()
	if err != nil {
		return err
	}
	srv.listener = ln

	go srv.handleSignals()
	err = srv.Serve(srv.listener)
	// Serve returns as soon as the listener closes; wait for Shutdown to
	// drain in-flight requests before letting main exit.
	<-srv.shutdownChan
	return err
}

func (srv *GraceServer) acquireListener() (net.Listener, error) {
	if srv.isChild {
		ln, err := net.FileListener(os.NewFile(gracefulListenerFd, ""))
		if err != nil {
			return nil, fmt.Errorf("inherit listener: %w", err)
		}
		return ln, nil
	}
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", srv.Addr, err)
	}
	return ln, nil
}

func (srv *GraceServer) handleSignals() {
	signal.Notify(srv.signalChan, syscall.SIGTERM, syscall.SIGUSR2)

	for sig := range srv.signalChan {
		switch sig {
		case syscall.SIGTERM:
			Sugar.Info("received SIGTERM, shutting down HTTP server")
			srv.drainAndClose()
		case syscall.SIGUSR2:
			Sugar.Info("received SIGUSR2, restarting HTTP server in place")
			pid, err := srv.forkChild()
			if err != nil {
				Sugar.Errorf("graceful restart failed: %v, continue serving", err)
				continue
			}
			Sugar.Infof("forked replacement process pid=%d, closing old server", pid)
			srv.drainAndClose()
		}
	}
}

func (srv *GraceServer) drainAndClose() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		Sugar.Errorf("HTTP server shutdown: %v", err)
	} else {
		Sugar.Info("HTTP server shutdown complete")
	}
	close(srv.shutdownChan)
}

// forkChild re-execs the current binary with the listener fd at position 3
// and the graceful marker set in its environment.
func (srv *GraceServer) forkChild() (int, error) {
	tcpLn, ok := srv.listener.(*net.TCPListener)
	if !ok {
		return 0, fmt.Errorf("listener is not *net.TCPListener")
	}
	file, err := tcpLn.File()
	if err != nil {
		return 0, fmt.Errorf("listener file: %w", err)
	}

	envs := make([]string, 0, len(os.Environ())+1)
	for _, e := range os.Environ() {
		if e != gracefulEnvPair {
			envs = append(envs, e)
		}
	}
	envs = append(envs, gracefulEnvPair)

	attr := &syscall.ProcAttr{
		Env:   envs,
		Files: []uintptr{os.Stdin.Fd(), os.Stdout.Fd(), os.Stderr.Fd(), file.Fd()},
	}
	pid, err := syscall.ForkExec(os.Args[0], os.Args, attr)
	if err != nil {
		return 0, fmt.Errorf("forkexec: %w", err)
	}
	return pid, nil
}

// Serve starts an HTTP server on addr with graceful shutdown and restart.
func Serve(addr string, handler http.Handler) error {
	return NewGraceServer(addr, handler).ListenAndServe()
}

// Package historytest provides a fixed history.Env for tests.
package historytest

import (
	"errors"
	"sync"
	"time"

	"github.com/roach88/ash/internal/history"
)

// Env is a history.Env whose every answer is a field.
//
// Thread-safety: Setenv and Getenv are guarded; set the other fields
// before sharing the value.
type Env struct {
	mu   sync.Mutex
	vars map[string]string

	Time     time.Time
	Dir      string
	DirErr   error
	Pid      int
	PPid     int
	User     int
	EffUser  int
	Terminal string
	Login    string
	Host     string
	HostErr  error
	ShellCmd string
	IPs      []history.Addr
	IPsErr   error
}

var _ history.Env = (*Env)(nil)

// NewEnv returns an Env describing a bash session on a terminal.
func NewEnv() *Env {
	return &Env{
		vars:     map[string]string{},
		Time:     time.Date(2011, 1, 1, 12, 0, 0, 0, time.UTC),
		Dir:      "/home/alice",
		Pid:      4242,
		PPid:     4200,
		User:     1000,
		EffUser:  1000,
		Terminal: "pts/3",
		Login:    "alice",
		Host:     "wonderland",
		ShellCmd: "bash",
	}
}

// Setenv sets an environment variable.
func (e *Env) Setenv(key, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.vars == nil {
		e.vars = map[string]string{}
	}
	e.vars[key] = value
}

func (e *Env) Getenv(key string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.vars[key]
}

func (e *Env) Now() time.Time { return e.Time }

func (e *Env) Cwd() (string, error) {
	if e.DirErr != nil {
		return "", e.DirErr
	}
	return e.Dir, nil
}

func (e *Env) ShellPid() int  { return e.Pid }
func (e *Env) ShellPPid() int { return e.PPid }
func (e *Env) UID() int       { return e.User }
func (e *Env) EUID() int      { return e.EffUser }
func (e *Env) TTY() string    { return e.Terminal }

func (e *Env) LoginName() string { return e.Login }

func (e *Env) Hostname() (string, error) { return e.Host, e.HostErr }

func (e *Env) Shell() string { return e.ShellCmd }

func (e *Env) Addrs() ([]history.Addr, error) { return e.IPs, e.IPsErr }

// ErrUnavailable is a generic failure to hand to the Err fields.
var ErrUnavailable = errors.New("unavailable")

package history

import (
	"github.com/roach88/ash/internal/store"
)

// Table names.
const (
	SessionsTable = "sessions"
	CommandsTable = "commands"
)

const createSessions = `CREATE TABLE IF NOT EXISTS sessions (
  id integer primary key autoincrement,
  hostname varchar(128),
  host_ip varchar(40),
  ppid int(5) not null,
  pid int(5) not null,
  time_zone str(3) not null,
  start_time integer not null,
  end_time integer,
  duration integer,
  tty varchar(20) not null,
  uid int(16) not null,
  euid int(16) not null,
  logname varchar(48),
  shell varchar(50) not null,
  sudo_user varchar(48),
  sudo_uid int(16),
  ssh_client varchar(60),
  ssh_connection varchar(100)
);`

const createCommands = `CREATE TABLE IF NOT EXISTS commands (
  id integer primary key autoincrement,
  session_id integer not null,
  shell_level integer not null,
  command_no integer,
  tty varchar(20) not null,
  euid int(16) not null,
  cwd varchar(256) not null,
  rval int(5) not null,
  start_time integer not null,
  end_time integer not null,
  duration integer not null,
  pipe_cnt int(3),
  pipe_vals varchar(80),
  command varchar(1000) not null,
UNIQUE(session_id, command_no)
);`

// RegisterTables adds the sessions and commands tables to reg.
func RegisterTables(reg *store.Registry) error {
	if err := reg.Register(SessionsTable, createSessions); err != nil {
		return err
	}
	return reg.Register(CommandsTable, createCommands)
}

// NewRegistry returns a registry holding every ash table.
func NewRegistry() (*store.Registry, error) {
	reg := store.NewRegistry()
	if err := RegisterTables(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

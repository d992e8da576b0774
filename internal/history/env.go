package history

import (
	"bytes"
	"fmt"
	"net"
	"net/netip"
	"os"
	"os/exec"
	"os/user"
	"strconv"
	"strings"
	"time"
)

// Env is the slice of the process environment that records are built from.
type Env interface {
	// Getenv returns the environment variable, or "" when unset.
	Getenv(key string) string
	Now() time.Time
	Cwd() (string, error)
	// ShellPid is the pid of the interactive shell that ran the hook.
	ShellPid() int
	// ShellPPid is the parent of the interactive shell.
	ShellPPid() int
	UID() int
	EUID() int
	// TTY is the controlling terminal without its /dev/ prefix, or "".
	TTY() string
	LoginName() string
	Hostname() (string, error)
	// Shell is the command name of the interactive shell.
	Shell() string
	Addrs() ([]Addr, error)
}

// Addr is one address assigned to a network interface.
type Addr struct {
	Interface string
	IP        netip.Addr
}

// System reads the live process environment.
//
// ash is run from a shell hook in a subshell, so the interactive shell is
// the grandparent of the current process.
type System struct{}

var _ Env = System{}

func (System) Getenv(key string) string { return os.Getenv(key) }
func (System) Now() time.Time           { return time.Now() }
func (System) Cwd() (string, error)     { return os.Getwd() }
func (System) UID() int                 { return os.Getuid() }
func (System) EUID() int                { return os.Geteuid() }

func (System) ShellPid() int {
	return parentOf(os.Getppid())
}

func (s System) ShellPPid() int {
	return parentOf(s.ShellPid())
}

func (s System) Shell() string {
	pid := s.ShellPid()
	if stat, err := procStat(pid); err == nil {
		return stat.comm
	}
	return ps("comm=", pid)
}

func (System) TTY() string {
	name, err := os.Readlink("/proc/self/fd/0")
	if err != nil || !strings.HasPrefix(name, "/dev/") {
		return ""
	}
	return strings.TrimPrefix(name, "/dev/")
}

func (System) LoginName() string {
	if name := os.Getenv("LOGNAME"); name != "" {
		return name
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return ""
}

func (System) Hostname() (string, error) { return os.Hostname() }

func (System) Addrs() ([]Addr, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("list interfaces: %w", err)
	}

	var addrs []Addr
	for _, iface := range ifaces {
		ifaddrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range ifaddrs {
			ipnet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			ip, ok := netip.AddrFromSlice(ipnet.IP)
			if !ok {
				continue
			}
			addrs = append(addrs, Addr{Interface: iface.Name, IP: ip.Unmap()})
		}
	}
	return addrs, nil
}

type stat struct {
	comm string
	ppid int
}

// procStat parses /proc/<pid>/stat. The command name is wrapped in
// parentheses and may itself contain spaces or parentheses.
func procStat(pid int) (stat, error) {
	b, err := os.ReadFile("/proc/" + strconv.Itoa(pid) + "/stat")
	if err != nil {
		return stat{}, err
	}
	open, end := bytes.IndexByte(b, '('), bytes.LastIndexByte(b, ')')
	if open < 0 || end < open {
		return stat{}, fmt.Errorf("malformed stat for pid %d", pid)
	}
	fields := strings.Fields(string(b[end+1:]))
	if len(fields) < 2 {
		return stat{}, fmt.Errorf("malformed stat for pid %d", pid)
	}
	ppid, _ := strconv.Atoi(fields[1])
	return stat{comm: string(b[open+1 : end]), ppid: ppid}, nil
}

func parentOf(pid int) int {
	if st, err := procStat(pid); err == nil {
		return st.ppid
	}
	ppid, _ := strconv.Atoi(ps("ppid=", pid))
	return ppid
}

// ps is the fallback for systems without procfs.
func ps(field string, pid int) string {
	out, err := exec.Command("ps", "-o", field, "-p", strconv.Itoa(pid)).Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

package history

import (
	"maps"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/ash/internal/config"
	"github.com/roach88/ash/internal/store"
)

// Session is a row of the sessions table.
type Session struct {
	values map[string]string
}

var _ store.Record = (*Session)(nil)

// NewSession describes the shell session env belongs to.
func NewSession(env Env, cfg config.Provider) *Session {
	hostname, _ := env.Hostname()

	return &Session{values: map[string]string{
		"time_zone":      store.Quote(timeZone(env.Now())),
		"start_time":     unixTime(env.Now()),
		"ppid":           strconv.Itoa(env.ShellPPid()),
		"pid":            strconv.Itoa(env.ShellPid()),
		"tty":            store.Quote(env.TTY()),
		"uid":            strconv.Itoa(env.UID()),
		"euid":           strconv.Itoa(env.EUID()),
		"logname":        store.Quote(env.LoginName()),
		"hostname":       store.Quote(hostname),
		"host_ip":        store.Quote(HostIP(env, cfg)),
		"shell":          store.Quote(env.Shell()),
		"sudo_user":      store.Quote(env.Getenv("SUDO_USER")),
		"sudo_uid":       store.Quote(env.Getenv("SUDO_UID")),
		"ssh_client":     store.Quote(env.Getenv("SSH_CLIENT")),
		"ssh_connection": store.Quote(env.Getenv("SSH_CONNECTION")),
	}}
}

func (s *Session) TableName() string { return SessionsTable }

func (s *Session) Values() map[string]string { return maps.Clone(s.values) }

// CloseSessionSQL returns the statement that stamps the end time and
// duration on session id.
func CloseSessionSQL(id int64, now time.Time) string {
	ts := unixTime(now)
	return "UPDATE sessions \n" +
		"SET \n" +
		"  end_time = " + ts + ", \n" +
		"  duration = " + ts + " - start_time \n" +
		"WHERE id == " + strconv.FormatInt(id, 10) + "; "
}

// HostIP returns the space separated addresses of this host that the
// configuration asks to record. IPv4 and IPv6 addresses are only included
// when LOG_IPV4 and LOG_IPV6 are set; SKIP_LOOPBACK drops the "lo"
// interface. Returns "" when nothing qualifies.
func HostIP(env Env, cfg config.Provider) string {
	addrs, err := env.Addrs()
	if err != nil {
		return ""
	}

	skipLoopback := cfg.Sets(config.KeySkipLoopback, false)
	logIPv4 := cfg.Sets(config.KeyLogIPv4, false)
	logIPv6 := cfg.Sets(config.KeyLogIPv6, false)

	var ips []string
	for _, a := range addrs {
		if !a.IP.IsValid() {
			continue
		}
		if skipLoopback && a.Interface == "lo" {
			continue
		}
		if a.IP.Is4() && !logIPv4 || a.IP.Is6() && !logIPv6 {
			continue
		}
		ips = append(ips, a.IP.WithZone("").String())
	}
	return strings.Join(ips, " ")
}

// timeZone returns the zone abbreviation, at most four characters long.
func timeZone(t time.Time) string {
	name, _ := t.Zone()
	if len(name) > 4 {
		name = name[:4]
	}
	return name
}

func unixTime(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10)
}

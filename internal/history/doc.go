// Package history builds the records ash keeps about shell usage.
//
// A Session row is written when a shell starts and closed when it exits;
// a Command row is written after every command the shell runs. Both read
// the process environment through Env so they can be built against a fake
// in tests. Record values are SQL literals, quoted with store.Quote.
package history

// Package log provides a minimal leveled logging facade with tagged context.
package log

import (
	"fmt"
	"log"
	"strings"
)

// Root is the package wide default logger.
var Root Logger = &Default{}

// Logger is the common logging interface. The variadic arguments are tag key value pairs.
// Keys must be strings and values should have a meaningful string representation.
type Logger interface {
	Debug(string, ...interface{})
	Error(string, ...interface{})
	Crit(string, ...interface{})
	With(...interface{}) Logger
}

// Default is a logger writing to the standard library log output.
type Default struct {
	Tags []interface{}
}

func (l *Default) Debug(m string, s ...interface{}) { log.Print(tfmt("DEB ", m, s, l.Tags)) }
func (l *Default) Error(m string, s ...interface{}) { log.Print(tfmt("ERR ", m, s, l.Tags)) }
func (l *Default) Crit(m string, s ...interface{})  { log.Print(tfmt("CRI ", m, s, l.Tags)) }

// With returns a new logger that appends tags to every message.
func (l *Default) With(tags ...interface{}) Logger {
	return l.with(tags)
}

func (l *Default) with(tags []interface{}) *Default {
	t := make([]interface{}, 0, len(tags)+len(l.Tags))
	t = append(t, tags...)
	t = append(t, l.Tags...)
	return &Default{Tags: t}
}

func tfmt(lvl, msg string, all ...[]interface{}) string {
	var b strings.Builder
	b.WriteString(lvl)
	b.WriteString(msg)
	for _, tags := range all {
		for i, v := range tags {
			if i%2 == 0 {
				b.WriteByte(' ')
			} else {
				b.WriteByte('=')
			}
			b.WriteString(fmt.Sprint(v))
		}
	}
	return b.String()
}

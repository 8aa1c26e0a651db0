// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	timeFormat     = "2006-01-02T15:04:05-0700"
	termTimeFormat = "01-02|15:04:05.000"
	termMsgJust    = 40
)

func levelColor(l slog.Level) int {
	switch {
	case l >= LevelCrit:
		return 35
	case l >= slog.LevelError:
		return 31
	case l >= slog.LevelWarn:
		return 33
	case l >= slog.LevelInfo:
		return 32
	case l >= slog.LevelDebug:
		return 36
	default:
		return 34
	}
}

// format renders a record as
//
//	LEVEL [01-02|15:04:05.000] message                                  key=value key=value
func (h *TerminalHandler) format(buf []byte, r slog.Record, usecolor bool) []byte {
	lvl := LevelAlignedString(r.Level)
	if usecolor {
		buf = append(buf, fmt.Sprintf("\x1b[%dm%s\x1b[0m", levelColor(r.Level), lvl)...)
	} else {
		buf = append(buf, lvl...)
	}
	buf = append(buf, " ["...)
	buf = r.Time.AppendFormat(buf, termTimeFormat)
	buf = append(buf, "] "...)
	buf = append(buf, r.Message...)

	if h.attrs != nil || r.NumAttrs() > 0 {
		if n := utf8.RuneCountInString(r.Message); n < termMsgJust {
			buf = append(buf, strings.Repeat(" ", termMsgJust-n)...)
		}
	}
	buf = h.formatAttributes(buf, r, usecolor)
	return append(buf, '\n')
}

func (h *TerminalHandler) formatAttributes(buf []byte, r slog.Record, color bool) []byte {
	writeAttr := func(attr slog.Attr, last bool) {
		buf = append(buf, ' ')
		if color {
			buf = append(buf, fmt.Sprintf("\x1b[%dm%s\x1b[0m=", levelColor(r.Level), attr.Key)...)
		} else {
			buf = append(buf, attr.Key...)
			buf = append(buf, '=')
		}
		val := formatValue(attr.Value)
		buf = append(buf, val...)

		if last {
			return
		}
		// pad to the widest value seen for this key
		length := utf8.RuneCountInString(val)
		padding := h.fieldPadding[attr.Key]
		if padding < length && length <= 40 {
			h.fieldPadding[attr.Key] = length
			padding = length
		}
		if padding > length {
			buf = append(buf, strings.Repeat(" ", padding-length)...)
		}
	}
	var n = 0
	var nAttrs = len(h.attrs) + r.NumAttrs()
	for _, attr := range h.attrs {
		writeAttr(attr, n == nAttrs-1)
		n++
	}
	r.Attrs(func(attr slog.Attr) bool {
		writeAttr(attr, n == nAttrs-1)
		n++
		return true
	})
	return buf
}

func formatValue(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return escape(v.String())
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindUint64:
		return strconv.FormatUint(v.Uint64(), 10)
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', 3, 64)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().Format(timeFormat)
	}
	switch x := v.Any().(type) {
	case nil:
		return "<nil>"
	case error:
		return escape(x.Error())
	case time.Time:
		return x.Format(timeFormat)
	case decimal.Decimal:
		return x.StringFixed(3)
	case fmt.Stringer:
		return escape(x.String())
	default:
		return escape(fmt.Sprintf("%+v", x))
	}
}

// escape quotes strings that contain whitespace, '=' or quotes.
func escape(s string) string {
	if s == "" {
		return `""`
	}
	for _, c := range s {
		if c <= ' ' || c == '=' || c == '"' || c == utf8.RuneError {
			return strconv.Quote(s)
		}
	}
	return s
}

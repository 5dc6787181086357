package fasp

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Sentinel is the line that opens every management frame.
const Sentinel = "FASPMGR 2"

// Terminal frame types.
const (
	TypeDone  = "DONE"
	TypeError = "ERROR"
)

// Frame is one complete event record. Raw is the exact accumulated text
// including line terminators; Fields keeps the last value of a repeated key.
type Frame struct {
	Raw    string
	Fields map[string]string
}

// Type returns the raw "Type" field.
func (f Frame) Type() string { return f.Fields["Type"] }

type parserState int

const (
	stateIdle parserState = iota
	stateOpen
)

// Parser turns control-channel lines into frames. The zero value is not
// usable; call NewParser.
type Parser struct {
	state  parserState
	raw    strings.Builder
	fields map[string]string
	last   map[string]string // fields of the last DONE/ERROR frame
	log    zerolog.Logger
}

// NewParser returns a parser in the idle state.
func NewParser(log zerolog.Logger) *Parser {
	return &Parser{log: log}
}

// Feed consumes one line, terminator included. It returns a completed frame
// when the line closes one.
func (p *Parser) Feed(line string) (*Frame, error) {
	body := strings.TrimRight(line, "\r\n")
	if body == Sentinel {
		if p.state == stateOpen {
			p.log.Debug().Int("fields", len(p.fields)).Msg("discarding partial frame")
		}
		p.state = stateOpen
		p.fields = make(map[string]string)
		p.raw.Reset()
		p.raw.WriteString(line)
		return nil, nil
	}
	p.raw.WriteString(line)
	if body == "" {
		if p.state != stateOpen {
			return nil, &ProtocolError{Reason: "unexpected empty line"}
		}
		f := &Frame{Raw: p.raw.String(), Fields: p.fields}
		p.state = stateIdle
		p.fields = nil
		p.raw.Reset()
		if t := f.Type(); t == TypeDone || t == TypeError {
			p.last = f.Fields
		}
		return f, nil
	}
	key, value, ok := splitField(body)
	if !ok {
		return nil, &ProtocolError{Reason: "unexpected line", Line: body}
	}
	if p.state != stateOpen {
		return nil, &ProtocolError{Reason: "unexpected line", Line: body}
	}
	p.fields[key] = value
	return nil, nil
}

// Result reports the outcome once the stream has ended: nil after DONE, a
// TransferError after ERROR, an InternalError when no terminal frame was seen.
func (p *Parser) Result() error {
	if p.last == nil {
		return ErrInternal("management channel closed without a terminal frame")
	}
	if p.last["Type"] == TypeDone {
		return nil
	}
	return &TransferError{Code: int(parseInt(p.last["Code"])), Description: p.last["Description"]}
}

// Run reads r until end of input, dispatching every completed frame. It keeps
// draining after a terminal frame since more frames may follow.
func Run(r io.Reader, p *Parser, dispatch func(Frame) error) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			p.log.Trace().Str("line", strings.TrimRight(line, "\r\n")).Msg("mgmt")
			f, perr := p.Feed(line)
			if perr != nil {
				return perr
			}
			if f != nil {
				if derr := dispatch(*f); derr != nil {
					return derr
				}
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return p.Result()
			}
			return err
		}
	}
}

// splitField splits "Key: Value". The key is non-empty and has no colon.
func splitField(s string) (string, string, bool) {
	i := strings.IndexByte(s, ':')
	if i <= 0 || i+1 >= len(s) || s[i+1] != ' ' {
		return "", "", false
	}
	return s[:i], s[i+2:], true
}

// parseInt parses a leading optionally-signed decimal and yields 0 when none is present.
func parseInt(s string) int64 {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

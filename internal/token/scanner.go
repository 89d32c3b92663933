package token

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
)

// Scanner reads tokens from a single line of input. Once it has produced an
// EOL token, every later call to Next produces EOL again.
type Scanner struct {
	src  io.RuneScanner
	buf  strings.Builder
	col  int
	done bool
}

func NewScanner(src io.RuneScanner) *Scanner {
	return &Scanner{src: src}
}

func (s *Scanner) readRune() (rune, error) {
	r, sz, err := s.src.ReadRune()
	if sz > 0 {
		s.col++
	}
	return r, err
}

// unreadRune panics if the underlying scanner refuses to unread, which only
// happens when it is misused.
func (s *Scanner) unreadRune() {
	if err := s.src.UnreadRune(); err != nil {
		panic(err)
	}
	s.col--
}

// Next scans the next token. Errors other than io.EOF from the underlying
// reader are returned wrapped; io.EOF is reported as an EOL token.
func (s *Scanner) Next() (Token, error) {
	if s.done {
		return Token{Kind: EOL, Pos: s.col + 1}, nil
	}
	defer s.buf.Reset()

	for {
		r, err := s.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.done = true
				return Token{Kind: EOL, Pos: s.col + 1}, nil
			}
			return Token{Pos: s.col}, fmt.Errorf("read token: %w", err)
		}

		tok := Token{Pos: s.col, Char: r, Text: string(r)}
		switch {
		case r == '\n' || r == '\r':
			s.done = true
			tok.Kind = EOL
			tok.Text = ""
			return tok, nil
		case unicode.IsSpace(r):
			continue
		case '0' <= r && r <= '9', r == '.':
			s.unreadRune()
			return s.scanNumber(tok.Pos)
		case r == '_', unicode.IsLetter(r):
			s.unreadRune()
			return s.scanWord(tok.Pos)
		case strings.ContainsRune(Operators, r):
			tok.Kind = Operator
		case strings.ContainsRune(OpenBrackets, r):
			tok.Kind = Open
		case strings.ContainsRune(CloseBrackets, r):
			tok.Kind = Close
		default:
			tok.Kind = Other
		}
		return tok, nil
	}
}

// scanNumber reads digits with at most one decimal point. A point with no
// digits around it reads as zero.
func (s *Scanner) scanNumber(pos int) (Token, error) {
	var digits, dot bool
	for {
		r, err := s.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return Token{Pos: pos}, fmt.Errorf("read number: %w", err)
		}
		if r == '.' && !dot {
			dot = true
			s.buf.WriteRune(r)
			continue
		}
		if '0' <= r && r <= '9' {
			digits = true
			s.buf.WriteRune(r)
			continue
		}
		s.unreadRune()
		break
	}

	text := s.buf.String()
	if !digits {
		return Token{Kind: Number, Value: 0, Text: text, Pos: pos}, nil
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		// Digits and a single point always parse unless the value is out of
		// range, in which case ParseFloat still returns ±Inf.
		var numErr *strconv.NumError
		if !errors.As(err, &numErr) || !errors.Is(numErr.Err, strconv.ErrRange) {
			return Token{Pos: pos}, fmt.Errorf("parse number %q: %w", text, err)
		}
	}

	return Token{Kind: Number, Value: v, Text: text, Pos: pos}, nil
}

func (s *Scanner) scanWord(pos int) (Token, error) {
	for {
		r, err := s.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return Token{Pos: pos}, fmt.Errorf("read word: %w", err)
		}
		if r == '_' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			s.buf.WriteRune(r)
			continue
		}
		s.unreadRune()
		break
	}

	return Token{Kind: Word, Text: s.buf.String(), Pos: pos}, nil
}

package logic

import (
	"strings"
	"time"
)

// DefaultSequenceTimeout is the quiet time after the last press that closes a pattern.
const DefaultSequenceTimeout = time.Second

// KeyUnknown is reported for press sequences that match no known pattern.
const KeyUnknown = 0

// Pattern is a closed group of presses.
type Pattern struct {
	Key     int
	Name    string
	Presses []Classification
	First   time.Time // time of the first press
	Last    time.Time // time of the last press
}

// patternTable maps press sequences (L, R, B) to dashboard key codes.
var patternTable = map[string]struct {
	key  int
	name string
}{
	"L":     {1, "LEFT"},
	"R":     {2, "RIGHT"},
	"B":     {3, "BOTH"},
	"LRR":   {4, "LEFT RIGHT RIGHT"},
	"RLL":   {5, "RIGHT LEFT LEFT"},
	"BB":    {6, "DOUBLE DUO"},
	"LLR":   {7, "LEFT LEFT RIGHT"},
	"RRL":   {8, "RIGHT RIGHT LEFT"},
	"RL":    {9, "RIGHT LEFT"},
	"LR":    {10, "LEFT RIGHT"},
	"LLRR":  {11, "DOUBLE LEFT DOUBLE RIGHT"},
	"LLLRR": {12, "3-LEFT 2-RIGHT"},
	"RLRL":  {13, "R-L-R-L"},
	"LRL":   {14, "LEFT RIGHT LEFT"},
	"RLR":   {15, "RIGHT LEFT RIGHT"},
	"LLL":   {16, "TRIPLE LEFT"},
	"RRR":   {17, "TRIPLE RIGHT"},
	"LLLL":  {18, "QUAD LEFT"},
	"RRRR":  {19, "QUAD RIGHT"},
	"LBL":   {20, "LEFT BOTH LEFT"},
	"RBR":   {21, "RIGHT BOTH RIGHT"},
	"BL":    {22, "BOTH LEFT"},
	"BR":    {23, "BOTH RIGHT"},
	"BBB":   {24, "TRIPLE BOTH"},
	"LRLR":  {25, "L-R-L-R"},
	"RRLL":  {26, "DOUBLE RIGHT DOUBLE LEFT"},
	"LLRL":  {27, "DOUBLE LEFT R-L"},
	"RRLR":  {28, "DOUBLE RIGHT L-R"},
	"RLRLR": {29, "R-L-R-L-R SWING"},
	"LLLR":  {30, "TRIPLE LEFT RIGHT"},
	"RRRL":  {31, "TRIPLE RIGHT LEFT"},
	"LLBR":  {32, "LEFT LEFT BOTH RIGHT"},
	"RRBL":  {33, "RIGHT RIGHT BOTH LEFT"},
	"LLLB":  {34, "TRIPLE LEFT BOTH"},
	"RRRB":  {35, "TRIPLE RIGHT BOTH"},
	"LL":    {36, "DOUBLE LEFT"},
	"RR":    {37, "DOUBLE RIGHT"},
}

// MaxPatternPresses is the length of the longest pattern in the table. A
// press beyond it closes the pending pattern at once as UNKNOWN, which keeps
// a chattering or stuck button from growing it without bound.
const MaxPatternPresses = 5

// Sequencer groups classified presses into patterns. A pattern closes once
// no press has been added for the sequence timeout.
type Sequencer struct {
	timeout time.Duration
	presses []Classification
	first   time.Time
	last    time.Time
	ready   []Pattern
}

// NewSequencer creates a sequencer. A zero timeout disables grouping:
// every press becomes its own pattern.
func NewSequencer(timeout time.Duration) *Sequencer {
	return &Sequencer{timeout: timeout}
}

// Add appends a press to the pending pattern. None is ignored.
func (s *Sequencer) Add(c Classification, t time.Time) {
	if c == None {
		return
	}
	if len(s.presses) == 0 {
		s.first = t
	}
	s.presses = append(s.presses, c)
	s.last = t

	if s.timeout <= 0 || len(s.presses) > MaxPatternPresses {
		s.ready = append(s.ready, s.close())
	}
}

// Flush returns the pending pattern once the sequence timeout has elapsed
// since its last press.
func (s *Sequencer) Flush(now time.Time) (Pattern, bool) {
	if len(s.ready) > 0 {
		p := s.ready[0]
		s.ready = s.ready[1:]
		return p, true
	}
	if len(s.presses) == 0 || now.Sub(s.last) < s.timeout {
		return Pattern{}, false
	}
	return s.close(), true
}

// Pending reports whether presses are waiting to be closed into a pattern.
func (s *Sequencer) Pending() bool {
	return len(s.presses) > 0 || len(s.ready) > 0
}

func (s *Sequencer) close() Pattern {
	key, name := Lookup(s.presses)
	p := Pattern{
		Key:     key,
		Name:    name,
		Presses: s.presses,
		First:   s.first,
		Last:    s.last,
	}
	s.presses = nil
	return p
}

// Lookup returns the key code and name for a press sequence.
func Lookup(presses []Classification) (int, string) {
	if e, ok := patternTable[sequenceKey(presses)]; ok {
		return e.key, e.name
	}
	return KeyUnknown, "UNKNOWN"
}

func sequenceKey(presses []Classification) string {
	var b strings.Builder
	for _, c := range presses {
		switch c {
		case LeftOnly:
			b.WriteByte('L')
		case RightOnly:
			b.WriteByte('R')
		case Both:
			b.WriteByte('B')
		}
	}
	return b.String()
}

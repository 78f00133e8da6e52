// Package domain holds the pure types shared by the injection engine and
// its adapters: tasks, radio primitives, devices and sentinel errors. It
// holds the fixed task header codec the ring buffer stores, but not the
// ring itself, the radio transport or the audit store.
package domain

import (
	"encoding/binary"
	"strconv"
	"time"
)

// TaskKind identifies what an injection script item does.
type TaskKind uint8

const (
	TaskTypeString TaskKind = iota
	TaskPressCombo
	TaskDelay
)

func (k TaskKind) String() string {
	switch k {
	case TaskTypeString:
		return "string"
	case TaskPressCombo:
		return "press"
	case TaskDelay:
		return "delay"
	default:
		return "unknown"
	}
}

// Lang selects the keyboard map a string/combo task is expanded against.
type Lang uint8

const (
	LangUS Lang = iota
	LangDE
)

const (
	// RingBufferSize is the fixed capacity of the TaskBuffer.
	RingBufferSize = 1 << 15

	// MaxTaskPayload is the largest payload (including the terminating
	// NUL for string/press tasks) Push accepts; a longer payload fails
	// with ErrTooLarge.
	MaxTaskPayload = 255

	// TaskScratchBufferSize is the minimum scratch buffer size Peek/Pop
	// callers must supply: MaxTaskPayload plus one byte of headroom.
	TaskScratchBufferSize = 256

	// TxDelay paces frames of a single task; the receiver dongle drops
	// frames delivered faster than its scan cycle.
	TxDelay = 8 * time.Millisecond

	// RetransmitBudget bounds TX_FAILED events tolerated per task before
	// it is abandoned.
	RetransmitBudget = 10

	HWRetransmitCount = 1
	HWRetransmitDelay = 250 * time.Microsecond
	TXPowerDBm        = 8
)

// TaskHeaderLen is the fixed, wire-stable size of an encoded task header:
// kind(1) + lang(1) + dataLen(2) + delayMs(4).
const TaskHeaderLen = 8

// Task is one script item. Data is owned by whoever currently holds the
// task: the TaskBuffer while enqueued, a caller-supplied scratch buffer
// once peeked or popped.
type Task struct {
	Kind    TaskKind
	Lang    Lang
	DataLen uint16
	DelayMS uint32
	Data    []byte
}

// NewStringTask builds a TypeString task. s must already include its
// terminating NUL; callers use NewStringTaskFrom for a plain string.
func NewStringTask(lang Lang, s []byte) Task {
	return Task{Kind: TaskTypeString, Lang: lang, DataLen: uint16(len(s)), Data: s}
}

// NewStringTaskFrom appends the terminating NUL a string task requires.
func NewStringTaskFrom(lang Lang, s string) Task {
	return NewStringTask(lang, append([]byte(s), 0))
}

// NewComboTask builds a PressCombo task from a combo string such as
// "CTRL+ALT+DEL", including its terminating NUL.
func NewComboTask(lang Lang, combo []byte) Task {
	return Task{Kind: TaskPressCombo, Lang: lang, DataLen: uint16(len(combo)), Data: combo}
}

func NewComboTaskFrom(lang Lang, combo string) Task {
	return NewComboTask(lang, append([]byte(combo), 0))
}

// NewDelayTask builds a Delay task; it carries no payload.
func NewDelayTask(ms uint32) Task {
	return Task{Kind: TaskDelay, DelayMS: ms}
}

// EncodeHeader writes the fixed-size header for t into a TaskHeaderLen
// buffer. It does not include the payload.
func (t Task) EncodeHeader(buf []byte) {
	buf[0] = byte(t.Kind)
	buf[1] = byte(t.Lang)
	binary.LittleEndian.PutUint16(buf[2:4], t.DataLen)
	binary.LittleEndian.PutUint32(buf[4:8], t.DelayMS)
}

// DecodeHeader parses a TaskHeaderLen buffer into a Task with no payload
// attached yet.
func DecodeHeader(buf []byte) Task {
	return Task{
		Kind:    TaskKind(buf[0]),
		Lang:    Lang(buf[1]),
		DataLen: binary.LittleEndian.Uint16(buf[2:4]),
		DelayMS: binary.LittleEndian.Uint32(buf[4:8]),
	}
}

// String renders a task the way the script listing sink expects:
// "<kind> <arg>", with arg being the ms value or the stored payload
// (terminating NUL stripped).
func (t Task) String() string {
	switch t.Kind {
	case TaskDelay:
		return "delay " + strconv.FormatUint(uint64(t.DelayMS), 10)
	case TaskTypeString:
		return "string " + trimNUL(t.Data)
	case TaskPressCombo:
		return "press " + trimNUL(t.Data)
	default:
		return "unknown"
	}
}

func trimNUL(b []byte) string {
	if n := len(b); n > 0 && b[n-1] == 0 {
		b = b[:n-1]
	}
	return string(b)
}

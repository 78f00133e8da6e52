//go:build linux

package radio

import (
	"bufio"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/airgapwing/hidinject/internal/core/domain"
	serial "github.com/daedaluz/goserial"
)

// responseTimeout bounds how long a command waits for the bridge's OK/ERR
// line before giving up on it.
const responseTimeout = time.Second

// SerialRadio drives a companion MCU over a TTY with a line-oriented
// request/response protocol, bridging this process to the physical ESB
// radio. Every command is one newline-terminated ASCII line; the
// bridge answers "OK\n" or "ERR <reason>\n", and pushes unsolicited
// "EVT <TX_SUCCESS|TX_SUCCESS_ACK_PAY|TX_FAILED|RX_RECEIVED>\n" lines for
// radio interrupts. The read loop is the TTY's only reader: it routes
// response lines to the in-flight command and EVT lines to the handler,
// so an interrupt arriving mid-command cannot be mistaken for its reply.
type SerialRadio struct {
	port *serial.Port

	cmdMu     sync.Mutex // serializes command/response exchanges
	responses chan string

	mu      sync.Mutex
	handler func(domain.RadioEvent)
}

// Open opens path as the radio bridge TTY and starts its event-reader
// goroutine.
func Open(path string) (*SerialRadio, error) {
	port, err := serial.Open(path, serial.NewOptions())
	if err != nil {
		return nil, fmt.Errorf("radio: open %s: %w", path, err)
	}
	r := &SerialRadio{port: port, responses: make(chan string, 1)}
	go r.readLoop()
	return r, nil
}

// OnEvent registers the callback invoked for every EVT line received
// from the bridge. Not part of ports.RadioDriver — see MockRadio.OnEvent.
func (r *SerialRadio) OnEvent(handler func(domain.RadioEvent)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handler = handler
}

func (r *SerialRadio) readLoop() {
	reader := bufio.NewReader(r.port)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			log.Printf("hidinject: radio: serial read loop exiting: %v", err)
			close(r.responses)
			return
		}
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "EVT "):
			evt, ok := parseEvent(strings.TrimPrefix(line, "EVT "))
			if !ok {
				log.Printf("hidinject: radio: unrecognized event line %q", line)
				continue
			}
			r.mu.Lock()
			h := r.handler
			r.mu.Unlock()
			if h != nil {
				h(evt)
			}
		case line == "":
			// keepalive, skip
		default:
			select {
			case r.responses <- line:
			default:
				log.Printf("hidinject: radio: unsolicited response line %q dropped", line)
			}
		}
	}
}

func parseEvent(s string) (domain.RadioEvent, bool) {
	switch s {
	case "TX_SUCCESS":
		return domain.TXSuccess, true
	case "TX_SUCCESS_ACK_PAY":
		return domain.TXSuccessAckPay, true
	case "TX_FAILED":
		return domain.TXFailed, true
	case "RX_RECEIVED":
		return domain.RXReceived, true
	default:
		return 0, false
	}
}

// command writes one request line and waits for its OK/ERR response.
func (r *SerialRadio) command(format string, args ...interface{}) error {
	r.cmdMu.Lock()
	defer r.cmdMu.Unlock()

	line := fmt.Sprintf(format, args...) + "\n"
	if _, err := r.port.Write([]byte(line)); err != nil {
		return fmt.Errorf("radio: write %q: %w", strings.TrimSpace(line), err)
	}
	select {
	case resp, ok := <-r.responses:
		if !ok {
			return fmt.Errorf("radio: bridge closed while waiting for response to %q", strings.TrimSpace(line))
		}
		if resp == "OK" || strings.HasPrefix(resp, "OK ") {
			return nil
		}
		return fmt.Errorf("radio: %q rejected: %s", strings.TrimSpace(line), resp)
	case <-time.After(responseTimeout):
		return fmt.Errorf("radio: timed out waiting for response to %q", strings.TrimSpace(line))
	}
}

func (r *SerialRadio) SetModePTX() error { return r.command("MODE PTX") }

func (r *SerialRadio) EnablePipes(mask uint8) error { return r.command("PIPES %d", mask) }

func (r *SerialRadio) SetBaseAddress0(base [4]byte) error {
	return r.command("BASE0 %02x%02x%02x%02x", base[0], base[1], base[2], base[3])
}

func (r *SerialRadio) UpdatePrefix0(prefix uint8) error {
	return r.command("PREFIX0 %02x", prefix)
}

func (r *SerialRadio) EnableAllChannelTXFailover(enable bool) error {
	if enable {
		return r.command("FAILOVER ON")
	}
	return r.command("FAILOVER OFF")
}

func (r *SerialRadio) SetAllChannelTXFailoverLoopCount(count int) error {
	return r.command("FAILOVER_LOOP %d", count)
}

func (r *SerialRadio) SetRetransmitCount(count int) error {
	return r.command("RETRANS_COUNT %d", count)
}

func (r *SerialRadio) SetRetransmitDelay(d time.Duration) error {
	return r.command("RETRANS_DELAY %d", d.Microseconds())
}

func (r *SerialRadio) SetTXPower(dBm int) error { return r.command("TXPOWER %d", dBm) }

func (r *SerialRadio) WritePayload(f *domain.Frame) error {
	return r.command("WRITE %d %x", f.Pipe, f.Bytes())
}

func (r *SerialRadio) StartTX() error { return r.command("STARTTX") }

func (r *SerialRadio) StopRX() error { return r.command("STOPRX") }

func (r *SerialRadio) FlushRX() error { return r.command("FLUSHRX") }

func (r *SerialRadio) ConvertPipeToAddress(pipe uint8) domain.RFAddress {
	// The bridge firmware owns this mapping; pipe 0 is always the one
	// bound to the target address the lifecycle wrapper configured.
	_ = pipe
	return domain.RFAddress{}
}

// Close releases the underlying TTY.
func (r *SerialRadio) Close() error {
	return r.port.Close()
}

package hive2

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"

	"github.com/apache/thrift/lib/go/thrift"
	"github.com/pkg/errors"

	"github.com/mumuhhh/hiveadapter/sasl"
)

// SASL negotiation status bytes (TSaslTransport).
const (
	saslStart    byte = 1
	saslOK       byte = 2
	saslBad      byte = 3
	saslError    byte = 4
	saslComplete byte = 5
)

const maxSaslPayload = 104857600

// TSaslClientTransport runs the SASL handshake on Open and afterwards
// frames every Flush as a 4-byte length prefixed, optionally wrapped,
// message.
type TSaslClientTransport struct {
	tp         thrift.TTransport
	saslClient sasl.Client

	writeBuffer *bytes.Buffer
	readBuffer  *bytes.Buffer

	shouldWrap bool
}

func NewTSaslClientTransport(tp thrift.TTransport, saslClient sasl.Client) *TSaslClientTransport {
	return &TSaslClientTransport{
		tp:          tp,
		saslClient:  saslClient,
		writeBuffer: new(bytes.Buffer),
		readBuffer:  new(bytes.Buffer),
	}
}

// readFrame reads one length prefixed frame into the read buffer.
func (t *TSaslClientTransport) readFrame() error {
	header := make([]byte, 4)
	if _, err := io.ReadFull(t.tp, header); err != nil {
		return err
	}
	length := binary.BigEndian.Uint32(header)
	if length > maxSaslPayload {
		return errors.Errorf("invalid SASL frame length: %d", length)
	}
	data := make([]byte, length)
	if _, err := io.ReadFull(t.tp, data); err != nil {
		return err
	}
	if t.shouldWrap {
		var err error
		if data, err = t.saslClient.Unwrap(data); err != nil {
			return errors.Wrap(err, "sasl unwrap")
		}
	}
	_, err := t.readBuffer.Write(data)
	return err
}

func (t *TSaslClientTransport) Read(p []byte) (int, error) {
	if t.readBuffer.Len() == 0 {
		if err := t.readFrame(); err != nil {
			return 0, err
		}
	}
	return t.readBuffer.Read(p)
}

func (t *TSaslClientTransport) Write(p []byte) (int, error) {
	return t.writeBuffer.Write(p)
}

func (t *TSaslClientTransport) Close() error {
	t.saslClient.Dispose()
	return t.tp.Close()
}

func (t *TSaslClientTransport) Flush(ctx context.Context) error {
	buf := t.writeBuffer.Bytes()
	if t.shouldWrap {
		var err error
		if buf, err = t.saslClient.Wrap(buf); err != nil {
			return errors.Wrap(err, "sasl wrap")
		}
	}
	frame := make([]byte, 4+len(buf))
	binary.BigEndian.PutUint32(frame, uint32(len(buf)))
	copy(frame[4:], buf)
	if _, err := t.tp.Write(frame); err != nil {
		return err
	}
	t.writeBuffer.Reset()
	return t.tp.Flush(ctx)
}

func (t *TSaslClientTransport) RemainingBytes() uint64 {
	return uint64(t.readBuffer.Len())
}

// sendSaslMessage writes a status byte, the body length and the body.
func (t *TSaslClientTransport) sendSaslMessage(ctx context.Context, status byte, body []byte) error {
	data := make([]byte, 5+len(body))
	data[0] = status
	binary.BigEndian.PutUint32(data[1:5], uint32(len(body)))
	copy(data[5:], body)

	if _, err := t.tp.Write(data); err != nil {
		return err
	}
	return t.tp.Flush(ctx)
}

// receiveSaslMessage reads a status byte and its payload.
func (t *TSaslClientTransport) receiveSaslMessage(ctx context.Context) (byte, []byte, error) {
	header := make([]byte, 5)
	if _, err := io.ReadFull(t.tp, header); err != nil {
		return 0, nil, err
	}
	status := header[0]
	length := binary.BigEndian.Uint32(header[1:])
	if length > maxSaslPayload {
		err := errors.Errorf("invalid SASL payload header length: %d", length)
		_ = t.sendSaslMessage(ctx, saslError, []byte(err.Error()))
		return 0, nil, err
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(t.tp, payload); err != nil {
		return 0, nil, err
	}
	if status == saslBad || status == saslError {
		return status, nil, errors.Errorf("SASL negotiation failed: %s", string(payload))
	}
	return status, payload, nil
}

func (t *TSaslClientTransport) sendStart(ctx context.Context) error {
	var initialResponse []byte
	if t.saslClient.HasInitialResponse() {
		var err error
		if initialResponse, err = t.saslClient.EvaluateChallenge(nil); err != nil {
			return err
		}
	}
	if err := t.sendSaslMessage(ctx, saslStart, []byte(t.saslClient.GetMechanismName())); err != nil {
		return err
	}
	status := saslOK
	if t.saslClient.IsComplete() {
		status = saslComplete
	}
	return t.sendSaslMessage(ctx, status, initialResponse)
}

func (t *TSaslClientTransport) Open() error {
	ctx := context.Background()
	if t.saslClient.IsComplete() {
		return errors.New("SASL transport already open")
	}
	if !t.tp.IsOpen() {
		if err := t.tp.Open(); err != nil {
			return err
		}
	}
	if err := t.sendStart(ctx); err != nil {
		return errors.Wrap(err, "SASL start")
	}

	var status byte
	for !t.saslClient.IsComplete() {
		var (
			payload []byte
			err     error
		)
		if status, payload, err = t.receiveSaslMessage(ctx); err != nil {
			return err
		}
		if status != saslOK && status != saslComplete {
			return errors.Errorf("expected SASL OK or COMPLETE, got %d", status)
		}
		if payload, err = t.saslClient.EvaluateChallenge(payload); err != nil {
			return errors.Wrap(err, "SASL challenge")
		}
		if status == saslComplete {
			break
		}
		reply := saslOK
		if t.saslClient.IsComplete() {
			reply = saslComplete
		}
		if err := t.sendSaslMessage(ctx, reply, payload); err != nil {
			return err
		}
	}
	if status != saslComplete {
		var err error
		if status, _, err = t.receiveSaslMessage(ctx); err != nil {
			return err
		}
		if status != saslComplete {
			return errors.New("expected SASL COMPLETE")
		}
	}

	qop, err := t.saslClient.GetNegotiatedProperty(sasl.PropQop)
	if err != nil {
		return err
	}
	t.shouldWrap = qop != sasl.QopAuthentication
	return nil
}

func (t *TSaslClientTransport) IsOpen() bool {
	return t.tp.IsOpen() && t.saslClient.IsComplete()
}

var _ thrift.TTransport = (*TSaslClientTransport)(nil)

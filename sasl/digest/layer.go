package sasldigest

import (
	"bytes"
	"crypto/hmac"
	"crypto/md5"
	"crypto/rc4"
	"encoding/binary"
	"hash"

	"github.com/pkg/errors"
)

const (
	macHMACLen    = 10
	macMsgTypeLen = 2
	macSeqNumLen  = 4
	macTrailerLen = macMsgTypeLen + macSeqNumLen
)

var macMsgType = [macMsgTypeLen]byte{0x00, 0x01}

// securityLayer wraps and unwraps frames once auth-int or auth-conf has been
// negotiated.
type securityLayer interface {
	Wrap(outgoing []byte) ([]byte, error)
	Unwrap(incoming []byte) ([]byte, error)
}

func seqBytes(n uint32) []byte {
	b := make([]byte, macSeqNumLen)
	binary.BigEndian.PutUint32(b, n)
	return b
}

// msgHMAC is HMAC(ki, {seqnum, msg})[0..9].
func msgHMAC(mac hash.Hash, seq, msg []byte) []byte {
	mac.Reset()
	mac.Write(seq)
	mac.Write(msg)
	return mac.Sum(nil)[:macHMACLen]
}

func integrityKeys(a1 string) (kic, kis []byte) {
	sum := h(a1)
	c := md5.Sum(append(append([]byte{}, sum...), "Digest session key to client-to-server signing key magic constant"...))
	s := md5.Sum(append(append([]byte{}, sum...), "Digest session key to server-to-client signing key magic constant"...))
	return c[:], s[:]
}

func privacyKeys(a1, cipher string) (kcc, kcs []byte) {
	sum := h(a1)
	n := md5.Size
	switch cipher {
	case "rc4-40":
		n = 5
	case "rc4-56":
		n = 7
	}
	c := md5.Sum(append(append([]byte{}, sum[:n]...), "Digest H(A1) to client-to-server sealing key magic constant"...))
	s := md5.Sum(append(append([]byte{}, sum[:n]...), "Digest H(A1) to server-to-client sealing key magic constant"...))
	return c[:], s[:]
}

type integrityLayer struct {
	sendSeq, readSeq uint32
	encodeMAC        hash.Hash
	decodeMAC        hash.Hash
}

func newIntegrityLayer(kic, kis []byte) *integrityLayer {
	return &integrityLayer{
		encodeMAC: hmac.New(md5.New, kic),
		decodeMAC: hmac.New(md5.New, kis),
	}
}

func (d *integrityLayer) Wrap(msg []byte) ([]byte, error) {
	if len(msg) == 0 {
		return []byte{}, nil
	}
	seq := seqBytes(d.sendSeq)
	out := make([]byte, 0, len(msg)+macHMACLen+macTrailerLen)
	out = append(out, msg...)
	out = append(out, msgHMAC(d.encodeMAC, seq, msg)...)
	out = append(out, macMsgType[:]...)
	out = append(out, seq...)
	d.sendSeq++
	return out, nil
}

func (d *integrityLayer) Unwrap(in []byte) ([]byte, error) {
	if len(in) == 0 {
		return []byte{}, nil
	}
	if len(in) < macHMACLen+macTrailerLen {
		return nil, errors.New("integrity check failed: frame too short")
	}
	dataLen := len(in) - macHMACLen - macTrailerLen
	seq := seqBytes(d.readSeq)
	mac := in[dataLen : dataLen+macHMACLen]
	msgType := in[dataLen+macHMACLen : dataLen+macHMACLen+macMsgTypeLen]
	seqNum := in[len(in)-macSeqNumLen:]

	if !hmac.Equal(msgHMAC(d.decodeMAC, seq, in[:dataLen]), mac) ||
		!bytes.Equal(macMsgType[:], msgType) ||
		!bytes.Equal(seq, seqNum) {
		return nil, errors.New("HMAC integrity check failed")
	}
	d.readSeq++
	return in[:dataLen], nil
}

type privacyLayer struct {
	integrityLayer
	encryptor *rc4.Cipher
	decryptor *rc4.Cipher
}

func newPrivacyLayer(kic, kis, kcc, kcs []byte) (*privacyLayer, error) {
	enc, err := rc4.NewCipher(kcc)
	if err != nil {
		return nil, errors.Wrap(err, "client sealing key")
	}
	dec, err := rc4.NewCipher(kcs)
	if err != nil {
		return nil, errors.Wrap(err, "server sealing key")
	}
	return &privacyLayer{
		integrityLayer: *newIntegrityLayer(kic, kis),
		encryptor:      enc,
		decryptor:      dec,
	}, nil
}

func (d *privacyLayer) Wrap(msg []byte) ([]byte, error) {
	if len(msg) == 0 {
		return []byte{}, nil
	}
	seq := seqBytes(d.sendSeq)
	block := make([]byte, 0, len(msg)+macHMACLen)
	block = append(block, msg...)
	block = append(block, msgHMAC(d.encodeMAC, seq, msg)...)
	d.encryptor.XORKeyStream(block, block)

	out := append(block, macMsgType[:]...)
	out = append(out, seq...)
	d.sendSeq++
	return out, nil
}

func (d *privacyLayer) Unwrap(in []byte) ([]byte, error) {
	if len(in) == 0 {
		return []byte{}, nil
	}
	if len(in) < macHMACLen+macTrailerLen {
		return nil, errors.New("privacy check failed: frame too short")
	}
	encLen := len(in) - macTrailerLen
	plain := make([]byte, encLen)
	d.decryptor.XORKeyStream(plain, in[:encLen])

	dataLen := encLen - macHMACLen
	seq := seqBytes(d.readSeq)
	msgType := in[encLen : encLen+macMsgTypeLen]
	seqNum := in[len(in)-macSeqNumLen:]

	if !hmac.Equal(msgHMAC(d.decodeMAC, seq, plain[:dataLen]), plain[dataLen:]) ||
		!bytes.Equal(macMsgType[:], msgType) ||
		!bytes.Equal(seq, seqNum) {
		return nil, errors.New("HMAC privacy check failed")
	}
	d.readSeq++
	return plain[:dataLen], nil
}

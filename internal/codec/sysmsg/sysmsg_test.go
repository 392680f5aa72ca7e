package sysmsg

import (
	"testing"

	"github.com/leandrodaf/midiwire/internal/codec/wire"
	"github.com/leandrodaf/midiwire/sdk/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
)

type collector struct {
	msgs []contracts.SystemMessage
}

func (c *collector) receiver() MessageReceiver {
	return func(m contracts.SystemMessage) { c.msgs = append(c.msgs, m) }
}

func feed(t *testing.T, d *Decoder, handled bool, bs ...byte) {
	t.Helper()
	for _, b := range bs {
		assert.Equal(t, handled, d.DecodeByte(b), "byte 0x%02X", b)
	}
}

func sysex(data ...byte) contracts.SystemMessage {
	if data == nil {
		data = []byte{}
	}
	return contracts.SystemMessage{Kind: contracts.SystemExclusive, Data: data}
}

func TestDecoder_SystemExclusive(t *testing.T) {
	c := &collector{}
	d := NewDecoder(c.receiver())

	feed(t, d, true, 0xF0, 0xF7)
	feed(t, d, true, 0xF0, 0x20, 0x01, 0x02, 0x00, 0x7F, 0x60, 0xF7)
	feed(t, d, true, 0xF0, 0xF7)

	assert.Equal(t, []contracts.SystemMessage{
		sysex(),
		sysex(0x20, 0x01, 0x02, 0x00, 0x7F, 0x60),
		sysex(),
	}, c.msgs)
}

func TestDecoder_Interleaved(t *testing.T) {
	c := &collector{}
	d := NewDecoder(c.receiver())

	feed(t, d, true, 0xF0, 0x01, 0x02, 0xFA, 0x03, 0x04, 0xF7)

	assert.Equal(t, []contracts.SystemMessage{
		{Kind: contracts.Start},
		sysex(0x01, 0x02, 0x03, 0x04),
	}, c.msgs)
}

func TestDecoder_SystemCommon(t *testing.T) {
	c := &collector{}
	d := NewDecoder(c.receiver())

	feed(t, d, true, 0xF1, 0x00, 0xF1, 0x7F, 0xF1, 0x40)
	feed(t, d, true, 0xF2, 0x00, 0x00, 0xF2, 0x60, 0x00, 0xF2, 0x00, 0x01, 0xF2, 0x7F, 0x7F)
	feed(t, d, true, 0xF3, 0x00, 0xF3, 0x35, 0xF3, 0x7F)
	feed(t, d, true, 0xF6)

	assert.Equal(t, []contracts.SystemMessage{
		{Kind: contracts.TimeCode, Value: 0},
		{Kind: contracts.TimeCode, Value: 0x7F},
		{Kind: contracts.TimeCode, Value: 0x40},
		{Kind: contracts.SongPosition, Value: 0},
		{Kind: contracts.SongPosition, Value: 0x60},
		{Kind: contracts.SongPosition, Value: 0x80},
		{Kind: contracts.SongPosition, Value: 0x3FFF},
		{Kind: contracts.SongSelect, Value: 0},
		{Kind: contracts.SongSelect, Value: 0x35},
		{Kind: contracts.SongSelect, Value: 0x7F},
		{Kind: contracts.TuneRequest},
	}, c.msgs)
}

func TestDecoder_RealTime(t *testing.T) {
	tests := []struct {
		b    byte
		kind contracts.SystemKind
	}{
		{0xF8, contracts.TimingClock},
		{0xFA, contracts.Start},
		{0xFB, contracts.Continue},
		{0xFC, contracts.Stop},
		{0xFE, contracts.ActiveSensing},
		{0xFF, contracts.SystemReset},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			c := &collector{}
			d := NewDecoder(c.receiver())
			feed(t, d, true, tt.b)
			assert.Equal(t, []contracts.SystemMessage{{Kind: tt.kind}}, c.msgs)
		})
	}
}

func TestDecoder_Unhandled(t *testing.T) {
	c := &collector{}
	d := NewDecoder(c.receiver())

	feed(t, d, false, 0x00, 0xF4, 0xF5, 0xF9, 0xFD)
	feed(t, d, true, 0xF0, 0xF6)
	feed(t, d, false, 0x00)
	feed(t, d, true, 0xF7)

	assert.Equal(t, []contracts.SystemMessage{{Kind: contracts.TuneRequest}}, c.msgs)
}

func TestDecoder_ChannelStatusAbortsMessage(t *testing.T) {
	c := &collector{}
	d := NewDecoder(c.receiver())

	feed(t, d, true, 0xF0, 0x01)
	feed(t, d, false, 0x90)
	feed(t, d, false, 0x02)
	feed(t, d, true, 0xF7)

	assert.Empty(t, c.msgs)
}

func TestDecoder_SysExPayloadIsACopy(t *testing.T) {
	c := &collector{}
	d := NewDecoder(c.receiver())

	feed(t, d, true, 0xF0, 0x01, 0xF7, 0xF0, 0x02, 0xF7)
	require.Len(t, c.msgs, 2)
	assert.Equal(t, []byte{0x01}, c.msgs[0].Data)
	assert.Equal(t, []byte{0x02}, c.msgs[1].Data)
}

type sink struct {
	data    []byte
	writes  int
	blocks  int
	ends    int
	blockOK bool
}

func (s *sink) OnBytesReceived(buf []byte) error {
	s.writes++
	s.data = append(s.data, buf...)
	return nil
}

func (s *sink) BeginBlock() bool { s.blocks++; return s.blockOK }

func (s *sink) EndBlock() error { s.ends++; return nil }

func TestEncoder_SongPositionRange(t *testing.T) {
	for _, v := range []int{0, 0x3FFF} {
		s := &sink{}
		assert.NoError(t, NewEncoder(s).SongPosition(v))
		assert.Len(t, s.data, 3)
	}
	for _, v := range []int{-1, 0x4000} {
		s := &sink{}
		err := NewEncoder(s).SongPosition(v)
		assert.ErrorIs(t, err, contracts.ErrInvalidArgument)
		assert.Empty(t, s.data)
		assert.Zero(t, s.blocks)
	}
}

func TestEncoder_SongSelectRange(t *testing.T) {
	for _, v := range []int{0, 0x7F} {
		assert.NoError(t, NewEncoder(&sink{}).SongSelect(v))
	}
	for _, v := range []int{-1, 0x80} {
		s := &sink{}
		assert.ErrorIs(t, NewEncoder(s).SongSelect(v), contracts.ErrInvalidArgument)
		assert.Empty(t, s.data)
	}
}

func TestEncoder_Bytes(t *testing.T) {
	tests := []struct {
		name  string
		write func(e *Encoder) error
		want  []byte
		block bool
	}{
		{"sysex", func(e *Encoder) error { return e.SystemExclusive([]byte{0x7E, 0x00}) }, []byte{0xF0, 0x7E, 0x00, 0xF7}, true},
		{"empty sysex", func(e *Encoder) error { return e.SystemExclusive(nil) }, []byte{0xF0, 0xF7}, true},
		{"time code", func(e *Encoder) error { return e.TimeCode(0x35) }, []byte{0xF1, 0x35}, true},
		{"song position", func(e *Encoder) error { return e.SongPosition(0x80) }, []byte{0xF2, 0x00, 0x01}, true},
		{"song select", func(e *Encoder) error { return e.SongSelect(0x12) }, []byte{0xF3, 0x12}, true},
		{"tune request", (*Encoder).TuneRequest, []byte{0xF6}, false},
		{"clock", (*Encoder).TimingClock, []byte{0xF8}, false},
		{"start", (*Encoder).Start, []byte{0xFA}, false},
		{"continue", (*Encoder).Continue, []byte{0xFB}, false},
		{"stop", (*Encoder).Stop, []byte{0xFC}, false},
		{"active sensing", (*Encoder).ActiveSensing, []byte{0xFE}, false},
		{"reset", (*Encoder).SystemReset, []byte{0xFF}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &sink{blockOK: true}
			require.NoError(t, tt.write(NewEncoder(s)))
			assert.Equal(t, tt.want, s.data)
			if tt.block {
				assert.Equal(t, 1, s.blocks)
				assert.Equal(t, 1, s.ends)
			} else {
				assert.Zero(t, s.blocks)
			}
		})
	}
}

func TestEncoder_NoEndBlockWhenUnsupported(t *testing.T) {
	s := &sink{}
	require.NoError(t, NewEncoder(s).SongSelect(1))
	assert.Equal(t, 1, s.blocks)
	assert.Zero(t, s.ends)
}

func TestEncoder_RejectsHighBitPayload(t *testing.T) {
	s := &sink{}
	err := NewEncoder(s).SystemExclusive([]byte{0x01, 0x80})
	assert.ErrorIs(t, err, contracts.ErrInvalidArgument)
	assert.Empty(t, s.data)
}

func TestEncoder_MatchesGomidi(t *testing.T) {
	s := &sink{}
	e := NewEncoder(s)
	require.NoError(t, e.SystemExclusive([]byte{0x41, 0x10, 0x42}))
	assert.Equal(t, []byte(gomidi.SysEx([]byte{0x41, 0x10, 0x42})), s.data)

	s.data = nil
	require.NoError(t, e.TimingClock())
	assert.Equal(t, []byte(gomidi.TimingClock()), s.data)
}

func TestEncoder_RoundTrip(t *testing.T) {
	msgs := []contracts.SystemMessage{
		sysex(0x7D, 0x01),
		{Kind: contracts.TimeCode, Value: 0x21},
		{Kind: contracts.SongPosition, Value: 0x1234},
		{Kind: contracts.SongSelect, Value: 0x05},
		{Kind: contracts.TuneRequest},
		{Kind: contracts.TimingClock},
		{Kind: contracts.Start},
		{Kind: contracts.Continue},
		{Kind: contracts.Stop},
		{Kind: contracts.ActiveSensing},
		{Kind: contracts.SystemReset},
	}

	s := &sink{}
	e := NewEncoder(s)
	for _, m := range msgs {
		require.NoError(t, e.Encode(m))
	}

	c := &collector{}
	d := NewDecoder(c.receiver())
	for _, b := range s.data {
		assert.True(t, d.DecodeByte(b))
	}
	assert.Equal(t, msgs, c.msgs)
}

func TestEncoder_UnknownKind(t *testing.T) {
	assert.ErrorIs(t, NewEncoder(&sink{}).Encode(contracts.SystemMessage{Kind: 0xF4}), contracts.ErrInvalidArgument)
}

func TestFilter_Pipeline(t *testing.T) {
	var events []contracts.Event
	c := &collector{}
	next := wire.NewEventReceiver(func(e contracts.Event) { events = append(events, e) }, nil)
	d := wire.NewDecoder(NewFilter(next, c.receiver()))

	require.NoError(t, d.OnBytesReceived([]byte{
		0x90, 0x3C, 0x7F,
		0xF0, 0x01, 0x02, 0xFA, 0x03, 0x04, 0xF7,
		0x12,
		0xF8,
		0x80, 0x3C, 0x00,
	}))

	assert.Equal(t, []contracts.SystemMessage{
		{Kind: contracts.Start},
		sysex(0x01, 0x02, 0x03, 0x04),
		{Kind: contracts.TimingClock},
	}, c.msgs)
	assert.Equal(t, []contracts.Event{
		{Command: contracts.NoteOn, Channel: 0, Note: 0x3C, Value: 0x7F},
		{Command: contracts.RawByte, Value: 0x12},
		{Command: contracts.NoteOff, Channel: 0, Note: 0x3C, Value: 0x00},
	}, events)
}

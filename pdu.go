package llcp

import "encoding/binary"

// PDUBody is one decoded LL control PDU. Every concrete type below is a
// fixed-layout struct matching the wire table in spec §6; all multi-byte
// fields are little-endian, matching the teacher's att/l2cap wire
// encoding convention (encoding/binary.LittleEndian throughout).
type PDUBody interface {
	Opcode() Opcode
	// Len is the fixed encoded payload length, excluding the opcode byte.
	Len() int
	// marshal writes the payload (not the opcode byte) into b, which is
	// guaranteed by Encode to have length >= Len().
	marshal(b []byte)
	// unmarshal reads the payload (not the opcode byte) from b, which is
	// guaranteed by Decode to have length >= Len(); a shorter buffer is
	// rejected by Decode before unmarshal is ever called.
	unmarshal(b []byte)
}

// Encode serializes body into out, prefixed with its opcode byte, and
// returns the number of bytes written. out must be at least
// 1+body.Len() bytes; Encode panics otherwise, mirroring the teacher's
// l2capWriter contract that callers size their buffers correctly rather
// than have every codec call return a sizing error.
func Encode(body PDUBody, out []byte) int {
	n := 1 + body.Len()
	if len(out) < n {
		panic("llcp: Encode: out buffer too small")
	}
	out[0] = byte(body.Opcode())
	body.marshal(out[1:n])
	return n
}

// Decode parses buf as an LL control PDU. An opcode this engine does not
// recognize decodes successfully to *UnknownPDU{Raw: opcode}; per spec
// §4.A this is not itself an error, the dispatcher answers it with
// LL_UNKNOWN_RSP. Decode fails only when buf is empty or its payload is
// shorter than the opcode's fixed length; the returned error carries a
// stack and errors.Cause unwraps it to a *CodecError.
func Decode(buf []byte) (PDUBody, error) {
	if len(buf) < 1 {
		return nil, newMalformed(0, "empty PDU")
	}
	op := Opcode(buf[0])
	payload := buf[1:]

	ctor, known := pduConstructors[op]
	if !known {
		return &UnknownPDU{Raw: op}, nil
	}
	body := ctor()
	if len(payload) < body.Len() {
		return nil, newMalformed(op, "payload shorter than minimum length for opcode")
	}
	body.unmarshal(payload)
	return body, nil
}

var pduConstructors = map[Opcode]func() PDUBody{
	OpConnectionUpdateInd: func() PDUBody { return &ConnectionUpdateInd{} },
	OpChannelMapInd:       func() PDUBody { return &ChannelMapInd{} },
	OpTerminateInd:        func() PDUBody { return &TerminateInd{} },
	OpEncReq:              func() PDUBody { return &EncReq{} },
	OpEncRsp:              func() PDUBody { return &EncRsp{} },
	OpStartEncReq:         func() PDUBody { return &StartEncReq{} },
	OpStartEncRsp:         func() PDUBody { return &StartEncRsp{} },
	OpUnknownRsp:          func() PDUBody { return &UnknownRsp{} },
	OpFeatureReq:          func() PDUBody { return &FeatureReq{} },
	OpFeatureRsp:          func() PDUBody { return &FeatureRsp{} },
	OpPauseEncReq:         func() PDUBody { return &PauseEncReq{} },
	OpPauseEncRsp:         func() PDUBody { return &PauseEncRsp{} },
	OpVersionInd:          func() PDUBody { return &VersionInd{} },
	OpRejectInd:           func() PDUBody { return &RejectInd{} },
	OpSlaveFeatureReq:     func() PDUBody { return &SlaveFeatureReq{} },
	OpRejectExtInd:        func() PDUBody { return &RejectExtInd{} },
	OpLengthReq:           func() PDUBody { return &LengthReq{} },
	OpLengthRsp:           func() PDUBody { return &LengthRsp{} },
	OpPhyReq:              func() PDUBody { return &PhyReq{} },
	OpPhyRsp:              func() PDUBody { return &PhyRsp{} },
	OpPhyUpdateInd:        func() PDUBody { return &PhyUpdateInd{} },
	// CONNECTION_PARAM_REQ/RSP (0x0F/0x10) are on the wire table but drive
	// no dedicated FSM in this engine (spec §9 open question, carried
	// verbatim — see DESIGN.md). They still decode into their full field
	// layout; the dispatcher maps them to no procedure and answers them
	// with LL_UNKNOWN_RSP.
	OpConnectionParamReq: func() PDUBody { return &ConnectionParamReq{} },
	OpConnectionParamRsp: func() PDUBody { return &ConnectionParamRsp{} },
}

// UnknownPDU is the decode result for an opcode this engine does not
// implement. Its Len is always 0: the dispatcher never needs its payload,
// only its opcode, to build the LL_UNKNOWN_RSP.
type UnknownPDU struct{ Raw Opcode }

func (p *UnknownPDU) Opcode() Opcode    { return p.Raw }
func (p *UnknownPDU) Len() int          { return 0 }
func (p *UnknownPDU) marshal([]byte)    {}
func (p *UnknownPDU) unmarshal([]byte)  {}

// ConnectionUpdateInd [Vol 6, Part B, 5.1.7].
type ConnectionUpdateInd struct {
	WinSize   uint8
	WinOffset uint16
	Interval  uint16
	Latency   uint16
	Timeout   uint16
	Instant   uint16
}

func (*ConnectionUpdateInd) Opcode() Opcode { return OpConnectionUpdateInd }
func (*ConnectionUpdateInd) Len() int       { return 11 }
func (p *ConnectionUpdateInd) marshal(b []byte) {
	b[0] = p.WinSize
	putU16(b[1:], p.WinOffset)
	putU16(b[3:], p.Interval)
	putU16(b[5:], p.Latency)
	putU16(b[7:], p.Timeout)
	putU16(b[9:], p.Instant)
}
func (p *ConnectionUpdateInd) unmarshal(b []byte) {
	p.WinSize = b[0]
	p.WinOffset = getU16(b[1:])
	p.Interval = getU16(b[3:])
	p.Latency = getU16(b[5:])
	p.Timeout = getU16(b[7:])
	p.Instant = getU16(b[9:])
}

// ChannelMapInd [Vol 6, Part B, 5.1.8].
type ChannelMapInd struct {
	ChM     [5]byte
	Instant uint16
}

func (*ChannelMapInd) Opcode() Opcode { return OpChannelMapInd }
func (*ChannelMapInd) Len() int       { return 7 }
func (p *ChannelMapInd) marshal(b []byte) {
	copy(b[0:5], p.ChM[:])
	putU16(b[5:], p.Instant)
}
func (p *ChannelMapInd) unmarshal(b []byte) {
	copy(p.ChM[:], b[0:5])
	p.Instant = getU16(b[5:])
}

// TerminateInd [Vol 6, Part B, 5.1.9].
type TerminateInd struct{ ErrorCode HCIError }

func (*TerminateInd) Opcode() Opcode           { return OpTerminateInd }
func (*TerminateInd) Len() int                 { return 1 }
func (p *TerminateInd) marshal(b []byte)       { b[0] = byte(p.ErrorCode) }
func (p *TerminateInd) unmarshal(b []byte)     { p.ErrorCode = HCIError(b[0]) }

// EncReq [Vol 6, Part B, 5.1.3].
type EncReq struct {
	Rand [8]byte
	EDiv uint16
	SKDm [8]byte
	IVm  [4]byte
}

func (*EncReq) Opcode() Opcode { return OpEncReq }
func (*EncReq) Len() int       { return 22 }
func (p *EncReq) marshal(b []byte) {
	copy(b[0:8], p.Rand[:])
	putU16(b[8:], p.EDiv)
	copy(b[10:18], p.SKDm[:])
	copy(b[18:22], p.IVm[:])
}
func (p *EncReq) unmarshal(b []byte) {
	copy(p.Rand[:], b[0:8])
	p.EDiv = getU16(b[8:])
	copy(p.SKDm[:], b[10:18])
	copy(p.IVm[:], b[18:22])
}

// EncRsp [Vol 6, Part B, 5.1.4].
type EncRsp struct {
	SKDs [8]byte
	IVs  [4]byte
}

func (*EncRsp) Opcode() Opcode { return OpEncRsp }
func (*EncRsp) Len() int       { return 12 }
func (p *EncRsp) marshal(b []byte) {
	copy(b[0:8], p.SKDs[:])
	copy(b[8:12], p.IVs[:])
}
func (p *EncRsp) unmarshal(b []byte) {
	copy(p.SKDs[:], b[0:8])
	copy(p.IVs[:], b[8:12])
}

// StartEncReq [Vol 6, Part B, 5.1.5]; empty payload.
type StartEncReq struct{}

func (*StartEncReq) Opcode() Opcode       { return OpStartEncReq }
func (*StartEncReq) Len() int             { return 0 }
func (*StartEncReq) marshal([]byte)       {}
func (*StartEncReq) unmarshal([]byte)     {}

// StartEncRsp [Vol 6, Part B, 5.1.6]; empty payload.
type StartEncRsp struct{}

func (*StartEncRsp) Opcode() Opcode       { return OpStartEncRsp }
func (*StartEncRsp) Len() int             { return 0 }
func (*StartEncRsp) marshal([]byte)       {}
func (*StartEncRsp) unmarshal([]byte)     {}

// UnknownRsp [Vol 6, Part B, 5.1.11].
type UnknownRsp struct{ UnknownType Opcode }

func (*UnknownRsp) Opcode() Opcode       { return OpUnknownRsp }
func (*UnknownRsp) Len() int             { return 1 }
func (p *UnknownRsp) marshal(b []byte)   { b[0] = byte(p.UnknownType) }
func (p *UnknownRsp) unmarshal(b []byte) { p.UnknownType = Opcode(b[0]) }

// FeatureReq [Vol 6, Part B, 5.1.15].
type FeatureReq struct{ Features FeatureSet }

func (*FeatureReq) Opcode() Opcode       { return OpFeatureReq }
func (*FeatureReq) Len() int             { return 8 }
func (p *FeatureReq) marshal(b []byte)   { putU64(b, uint64(p.Features)) }
func (p *FeatureReq) unmarshal(b []byte) { p.Features = FeatureSet(getU64(b)) }

// FeatureRsp [Vol 6, Part B, 5.1.16].
type FeatureRsp struct{ Features FeatureSet }

func (*FeatureRsp) Opcode() Opcode       { return OpFeatureRsp }
func (*FeatureRsp) Len() int             { return 8 }
func (p *FeatureRsp) marshal(b []byte)   { putU64(b, uint64(p.Features)) }
func (p *FeatureRsp) unmarshal(b []byte) { p.Features = FeatureSet(getU64(b)) }

// PauseEncReq/PauseEncRsp [Vol 6, Part B, 5.1.12/5.1.13]; empty payload.
type PauseEncReq struct{}

func (*PauseEncReq) Opcode() Opcode   { return OpPauseEncReq }
func (*PauseEncReq) Len() int         { return 0 }
func (*PauseEncReq) marshal([]byte)   {}
func (*PauseEncReq) unmarshal([]byte) {}

type PauseEncRsp struct{}

func (*PauseEncRsp) Opcode() Opcode   { return OpPauseEncRsp }
func (*PauseEncRsp) Len() int         { return 0 }
func (*PauseEncRsp) marshal([]byte)   {}
func (*PauseEncRsp) unmarshal([]byte) {}

// VersionInd [Vol 6, Part B, 5.1.10].
type VersionInd struct {
	Version    uint8
	Company    uint16
	Subversion uint16
}

func (*VersionInd) Opcode() Opcode { return OpVersionInd }
func (*VersionInd) Len() int       { return 5 }
func (p *VersionInd) marshal(b []byte) {
	b[0] = p.Version
	putU16(b[1:], p.Company)
	putU16(b[3:], p.Subversion)
}
func (p *VersionInd) unmarshal(b []byte) {
	p.Version = b[0]
	p.Company = getU16(b[1:])
	p.Subversion = getU16(b[3:])
}

// RejectInd [Vol 6, Part B, 5.1.2].
type RejectInd struct{ ErrorCode HCIError }

func (*RejectInd) Opcode() Opcode       { return OpRejectInd }
func (*RejectInd) Len() int             { return 1 }
func (p *RejectInd) marshal(b []byte)   { b[0] = byte(p.ErrorCode) }
func (p *RejectInd) unmarshal(b []byte) { p.ErrorCode = HCIError(b[0]) }

// SlaveFeatureReq [Vol 6, Part B, 5.1.19].
type SlaveFeatureReq struct{ Features FeatureSet }

func (*SlaveFeatureReq) Opcode() Opcode       { return OpSlaveFeatureReq }
func (*SlaveFeatureReq) Len() int             { return 8 }
func (p *SlaveFeatureReq) marshal(b []byte)   { putU64(b, uint64(p.Features)) }
func (p *SlaveFeatureReq) unmarshal(b []byte) { p.Features = FeatureSet(getU64(b)) }

// ConnectionParamReq/Rsp [Vol 6, Part B, 5.1.20/5.1.21]. Decodable per the
// wire table but not driven by a dedicated FSM; see DESIGN.md.
type ConnectionParamReq struct {
	IntervalMin, IntervalMax uint16
	Latency                  uint16
	Timeout                  uint16
	PreferredPeriodicity     uint8
	ReferenceConnEventCount  uint16
	Offset0, Offset1, Offset2, Offset3, Offset4, Offset5 uint16
}

func (*ConnectionParamReq) Opcode() Opcode { return OpConnectionParamReq }
func (*ConnectionParamReq) Len() int       { return 23 }
func (p *ConnectionParamReq) marshal(b []byte) {
	putU16(b[0:], p.IntervalMin)
	putU16(b[2:], p.IntervalMax)
	putU16(b[4:], p.Latency)
	putU16(b[6:], p.Timeout)
	b[8] = p.PreferredPeriodicity
	putU16(b[9:], p.ReferenceConnEventCount)
	putU16(b[11:], p.Offset0)
	putU16(b[13:], p.Offset1)
	putU16(b[15:], p.Offset2)
	putU16(b[17:], p.Offset3)
	putU16(b[19:], p.Offset4)
	putU16(b[21:], p.Offset5)
}
func (p *ConnectionParamReq) unmarshal(b []byte) {
	p.IntervalMin = getU16(b[0:])
	p.IntervalMax = getU16(b[2:])
	p.Latency = getU16(b[4:])
	p.Timeout = getU16(b[6:])
	p.PreferredPeriodicity = b[8]
	p.ReferenceConnEventCount = getU16(b[9:])
	p.Offset0 = getU16(b[11:])
	p.Offset1 = getU16(b[13:])
	p.Offset2 = getU16(b[15:])
	p.Offset3 = getU16(b[17:])
	p.Offset4 = getU16(b[19:])
	p.Offset5 = getU16(b[21:])
}

// ConnectionParamRsp has the identical layout to ConnectionParamReq
// [Vol 6, Part B, 5.1.21].
type ConnectionParamRsp ConnectionParamReq

func (*ConnectionParamRsp) Opcode() Opcode { return OpConnectionParamRsp }
func (*ConnectionParamRsp) Len() int       { return 23 }
func (p *ConnectionParamRsp) marshal(b []byte) {
	(*ConnectionParamReq)(p).marshal(b)
}
func (p *ConnectionParamRsp) unmarshal(b []byte) {
	(*ConnectionParamReq)(p).unmarshal(b)
}

// RejectExtInd [Vol 6, Part B, 5.1.22].
type RejectExtInd struct {
	RejectOpcode Opcode
	ErrorCode    HCIError
}

func (*RejectExtInd) Opcode() Opcode { return OpRejectExtInd }
func (*RejectExtInd) Len() int       { return 2 }
func (p *RejectExtInd) marshal(b []byte) {
	b[0] = byte(p.RejectOpcode)
	b[1] = byte(p.ErrorCode)
}
func (p *RejectExtInd) unmarshal(b []byte) {
	p.RejectOpcode = Opcode(b[0])
	p.ErrorCode = HCIError(b[1])
}

// LengthReq/LengthRsp [Vol 6, Part B, 5.1.9 DLE].
type LengthReq struct {
	MaxRxOctets, MaxRxTime uint16
	MaxTxOctets, MaxTxTime uint16
}

func (*LengthReq) Opcode() Opcode { return OpLengthReq }
func (*LengthReq) Len() int       { return 8 }
func (p *LengthReq) marshal(b []byte) {
	putU16(b[0:], p.MaxRxOctets)
	putU16(b[2:], p.MaxRxTime)
	putU16(b[4:], p.MaxTxOctets)
	putU16(b[6:], p.MaxTxTime)
}
func (p *LengthReq) unmarshal(b []byte) {
	p.MaxRxOctets = getU16(b[0:])
	p.MaxRxTime = getU16(b[2:])
	p.MaxTxOctets = getU16(b[4:])
	p.MaxTxTime = getU16(b[6:])
}

type LengthRsp LengthReq

func (*LengthRsp) Opcode() Opcode           { return OpLengthRsp }
func (*LengthRsp) Len() int                 { return 8 }
func (p *LengthRsp) marshal(b []byte)       { (*LengthReq)(p).marshal(b) }
func (p *LengthRsp) unmarshal(b []byte)     { (*LengthReq)(p).unmarshal(b) }

// PhyReq/PhyRsp [Vol 6, Part B, 5.1.16a/5.1.16b].
type PhyReq struct{ TxPhys, RxPhys PHY }

func (*PhyReq) Opcode() Opcode { return OpPhyReq }
func (*PhyReq) Len() int       { return 2 }
func (p *PhyReq) marshal(b []byte) {
	b[0] = byte(p.TxPhys)
	b[1] = byte(p.RxPhys)
}
func (p *PhyReq) unmarshal(b []byte) {
	p.TxPhys = PHY(b[0])
	p.RxPhys = PHY(b[1])
}

type PhyRsp PhyReq

func (*PhyRsp) Opcode() Opcode       { return OpPhyRsp }
func (*PhyRsp) Len() int             { return 2 }
func (p *PhyRsp) marshal(b []byte)   { (*PhyReq)(p).marshal(b) }
func (p *PhyRsp) unmarshal(b []byte) { (*PhyReq)(p).unmarshal(b) }

// PhyUpdateInd [Vol 6, Part B, 5.1.16c].
type PhyUpdateInd struct {
	MToSPhy, SToMPhy PHY
	Instant          uint16
}

func (*PhyUpdateInd) Opcode() Opcode { return OpPhyUpdateInd }
func (*PhyUpdateInd) Len() int       { return 4 }
func (p *PhyUpdateInd) marshal(b []byte) {
	b[0] = byte(p.MToSPhy)
	b[1] = byte(p.SToMPhy)
	putU16(b[2:], p.Instant)
}
func (p *PhyUpdateInd) unmarshal(b []byte) {
	p.MToSPhy = PHY(b[0])
	p.SToMPhy = PHY(b[1])
	p.Instant = getU16(b[2:])
}

func putU16(b []byte, v uint16) { binary.LittleEndian.PutUint16(b, v) }
func getU16(b []byte) uint16    { return binary.LittleEndian.Uint16(b) }
func putU64(b []byte, v uint64) { binary.LittleEndian.PutUint64(b, v) }
func getU64(b []byte) uint64    { return binary.LittleEndian.Uint64(b) }

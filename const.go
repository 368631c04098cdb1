package llcp

// This file collects constants from the Bluetooth Core Specification
// relevant to the LL control procedures: opcodes for LL control PDUs,
// HCI error codes, feature bits and PHY bits.

// Opcode identifies an LL control PDU, the first byte of its payload.
type Opcode uint8

// LL control PDU opcodes [Vol 6, Part B, 2.4].
const (
	OpConnectionUpdateInd Opcode = 0x00
	OpChannelMapInd       Opcode = 0x01
	OpTerminateInd        Opcode = 0x02
	OpEncReq              Opcode = 0x03
	OpEncRsp              Opcode = 0x04
	OpStartEncReq         Opcode = 0x05
	OpStartEncRsp         Opcode = 0x06
	OpUnknownRsp          Opcode = 0x07
	OpFeatureReq          Opcode = 0x08
	OpFeatureRsp          Opcode = 0x09
	OpPauseEncReq         Opcode = 0x0A
	OpPauseEncRsp         Opcode = 0x0B
	OpVersionInd          Opcode = 0x0C
	OpRejectInd           Opcode = 0x0D
	OpSlaveFeatureReq     Opcode = 0x0E
	OpConnectionParamReq  Opcode = 0x0F
	OpConnectionParamRsp  Opcode = 0x10
	OpRejectExtInd        Opcode = 0x11
	OpLengthReq           Opcode = 0x14
	OpLengthRsp           Opcode = 0x15
	OpPhyReq              Opcode = 0x16
	OpPhyRsp              Opcode = 0x17
	OpPhyUpdateInd        Opcode = 0x18
)

// opcodeNames is used only for logging/tracing; never for control flow.
var opcodeNames = map[Opcode]string{
	OpConnectionUpdateInd: "LL_CONNECTION_UPDATE_IND",
	OpChannelMapInd:       "LL_CHANNEL_MAP_IND",
	OpTerminateInd:        "LL_TERMINATE_IND",
	OpEncReq:              "LL_ENC_REQ",
	OpEncRsp:              "LL_ENC_RSP",
	OpStartEncReq:         "LL_START_ENC_REQ",
	OpStartEncRsp:         "LL_START_ENC_RSP",
	OpUnknownRsp:          "LL_UNKNOWN_RSP",
	OpFeatureReq:          "LL_FEATURE_REQ",
	OpFeatureRsp:          "LL_FEATURE_RSP",
	OpPauseEncReq:         "LL_PAUSE_ENC_REQ",
	OpPauseEncRsp:         "LL_PAUSE_ENC_RSP",
	OpVersionInd:          "LL_VERSION_IND",
	OpRejectInd:           "LL_REJECT_IND",
	OpSlaveFeatureReq:     "LL_SLAVE_FEATURE_REQ",
	OpConnectionParamReq:  "LL_CONNECTION_PARAM_REQ",
	OpConnectionParamRsp:  "LL_CONNECTION_PARAM_RSP",
	OpRejectExtInd:        "LL_REJECT_EXT_IND",
	OpLengthReq:           "LL_LENGTH_REQ",
	OpLengthRsp:           "LL_LENGTH_RSP",
	OpPhyReq:              "LL_PHY_REQ",
	OpPhyRsp:              "LL_PHY_RSP",
	OpPhyUpdateInd:        "LL_PHY_UPDATE_IND",
}

func (o Opcode) String() string {
	if n, ok := opcodeNames[o]; ok {
		return n
	}
	return "LL_UNKNOWN"
}

// HCIError is an HCI error-code byte [Vol 2, Part D].
type HCIError uint8

// HCI error codes used by the procedure FSMs and HCI entry points.
const (
	ErrSuccess               HCIError = 0x00
	ErrUnknownConnID         HCIError = 0x02
	ErrAuthFailure           HCIError = 0x05
	ErrPinOrKeyMissing       HCIError = 0x06
	ErrMemCapacityExceeded   HCIError = 0x07
	ErrConnTimeout           HCIError = 0x08
	ErrCmdDisallowed         HCIError = 0x0C
	ErrUnsupportedParams     HCIError = 0x11
	ErrRemoteUserTerminated  HCIError = 0x13
	ErrLocalHostTerminated   HCIError = 0x16
	ErrUnsupportedRemoteFeat HCIError = 0x1A
	ErrInvalidLLParameters   HCIError = 0x1E
	ErrUnspecifiedError      HCIError = 0x1F
	ErrLLResponseTimeout     HCIError = 0x22
	ErrLLProcCollision       HCIError = 0x23
	ErrDiffTransCollision    HCIError = 0x2A
	ErrUnknownCmd            HCIError = 0x01
)

func (e HCIError) Error() string { return hciErrorNames[e] }

var hciErrorNames = map[HCIError]string{
	ErrSuccess:               "success",
	ErrUnknownConnID:         "unknown connection identifier",
	ErrAuthFailure:           "authentication failure",
	ErrPinOrKeyMissing:       "pin or key missing",
	ErrMemCapacityExceeded:   "memory capacity exceeded",
	ErrConnTimeout:           "connection timeout",
	ErrCmdDisallowed:         "command disallowed",
	ErrUnsupportedParams:     "unsupported feature or parameter value",
	ErrRemoteUserTerminated:  "remote user terminated connection",
	ErrLocalHostTerminated:   "connection terminated by local host",
	ErrUnsupportedRemoteFeat: "unsupported remote feature",
	ErrInvalidLLParameters:   "invalid LL parameters",
	ErrUnspecifiedError:      "unspecified error",
	ErrLLResponseTimeout:     "LL response timeout",
	ErrLLProcCollision:       "LL procedure collision",
	ErrDiffTransCollision:    "different transaction collision",
	ErrUnknownCmd:            "unknown HCI command",
}

// Role is the BLE connection role.
type Role uint8

const (
	RoleCentral Role = iota
	RolePeripheral
)

func (r Role) String() string {
	if r == RoleCentral {
		return "central"
	}
	return "peripheral"
}

// PHY identifies a BLE physical layer.
type PHY uint8

const (
	Phy1M PHY = 1 << iota
	Phy2M
	PhyCoded
)

// phyPreference ranks higher-throughput PHYs first, used when selecting
// among a mask of mutually acceptable PHYs: 2M > CODED > 1M.
var phyPreference = []PHY{Phy2M, PhyCoded, Phy1M}

// selectPHY returns the most preferred PHY present in mask, or 0 if mask
// is empty.
func selectPHY(mask PHY) PHY {
	for _, p := range phyPreference {
		if mask&p != 0 {
			return p
		}
	}
	return 0
}

// Feature bits [Vol 6, Part B, 4.6], the subset this engine reasons about.
type FeatureSet uint64

const (
	FeatureEncryption           FeatureSet = 1 << 0
	FeatureConnParamRequest     FeatureSet = 1 << 1
	FeatureExtendedReject       FeatureSet = 1 << 2
	FeatureSlaveFeatureExchange FeatureSet = 1 << 3
	FeaturePing                 FeatureSet = 1 << 4
	FeatureDataLengthExtension  FeatureSet = 1 << 5
	Feature2MPHY                FeatureSet = 1 << 8
	FeatureCodedPHY             FeatureSet = 1 << 11
	FeatureChannelSelection2    FeatureSet = 1 << 14
)

// Data length bounds [Vol 6, Part B, 4.5.10].
const (
	MinDataOctets = 27
	MaxDataOctets = 251
)

// instantWindow is the largest forward delta, in connection events, that
// still counts as "not yet reached" for a scheduled instant (invariant 4).
const instantWindow = 0x7FFF

// isInstantReached reports whether the connection event counter ec has
// reached or passed the scheduled instant, per the wrap-safe comparison
// in spec §4.F: ((ec - instant) mod 2^16) <= 0x7FFF.
func isInstantReached(ec, instant uint16) bool {
	return uint16(ec-instant) <= instantWindow
}

// noPhyChangeInstant is the sentinel instant value meaning "PHY_UPDATE_IND
// carries no change", per spec §4.F PHY Update (central, local).
const noPhyChangeInstant = 0xFFFF

// minPhyUpdateLatency is the minimum connection-event lead time the spec
// requires before an instant may be scheduled (the "6" in "max(6, peer
// latency + 6)").
const minPhyUpdateLatency = 6

// instantLeadEvents returns how many connection events ahead of the
// current one an instant-based procedure (PHY Update, Channel Map
// Update, Connection Update) must schedule its instant, per spec §4.F's
// "max(6, peer_latency + 6)": a peripheral observing only one in every
// latency+1 connection events still needs at least one opportunity to
// see the instant before it takes effect.
func instantLeadEvents(latency uint16) uint16 {
	lead := uint16(minPhyUpdateLatency)
	if latency+minPhyUpdateLatency > lead {
		lead = latency + minPhyUpdateLatency
	}
	return lead
}

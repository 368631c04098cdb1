package llcp

import (
	"reflect"
	"testing"

	"github.com/pkg/errors"
)

func TestDecodeUnknownOpcode(t *testing.T) {
	body, err := Decode([]byte{0x7F})
	if err != nil {
		t.Fatalf("Decode: unexpected error %v", err)
	}
	unk, ok := body.(*UnknownPDU)
	if !ok {
		t.Fatalf("Decode: got %T, want *UnknownPDU", body)
	}
	if unk.Raw != 0x7F {
		t.Fatalf("Raw = %#x, want 0x7F", unk.Raw)
	}
}

func TestDecodeMalformedShortPayload(t *testing.T) {
	_, err := Decode([]byte{byte(OpPhyReq), 0x01})
	if err == nil {
		t.Fatal("Decode: want error for short PHY_REQ payload")
	}
	ce, ok := errors.Cause(err).(*CodecError)
	if !ok {
		t.Fatalf("Decode: error %v is not a *CodecError", err)
	}
	if ce.Opcode != OpPhyReq {
		t.Fatalf("CodecError.Opcode = %v, want OpPhyReq", ce.Opcode)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []PDUBody{
		&ConnectionUpdateInd{WinSize: 2, WinOffset: 3, Interval: 36, Latency: 0, Timeout: 500, Instant: 42},
		&ChannelMapInd{ChM: [5]byte{0xFF, 0xFF, 0xFF, 0xFF, 0x1F}, Instant: 7},
		&TerminateInd{ErrorCode: ErrRemoteUserTerminated},
		&EncReq{Rand: [8]byte{1, 2, 3}, EDiv: 9, SKDm: [8]byte{4, 5}, IVm: [4]byte{6, 7}},
		&EncRsp{SKDs: [8]byte{8, 9}, IVs: [4]byte{1, 2}},
		&StartEncReq{},
		&StartEncRsp{},
		&UnknownRsp{UnknownType: OpPhyReq},
		&FeatureReq{Features: FeatureEncryption | Feature2MPHY},
		&FeatureRsp{Features: FeatureDataLengthExtension},
		&PauseEncReq{},
		&PauseEncRsp{},
		&VersionInd{Version: 0x0D, Company: 0x000F, Subversion: 0x1234},
		&RejectInd{ErrorCode: ErrPinOrKeyMissing},
		&SlaveFeatureReq{Features: FeaturePing},
		&RejectExtInd{RejectOpcode: OpPhyReq, ErrorCode: ErrLLProcCollision},
		&LengthReq{MaxRxOctets: 200, MaxRxTime: 1500, MaxTxOctets: 120, MaxTxTime: 900},
		&LengthRsp{MaxRxOctets: 27, MaxRxTime: 328, MaxTxOctets: 27, MaxTxTime: 328},
		&PhyReq{TxPhys: Phy2M, RxPhys: Phy1M | Phy2M},
		&PhyRsp{TxPhys: Phy1M, RxPhys: Phy2M},
		&PhyUpdateInd{MToSPhy: Phy2M, SToMPhy: Phy2M, Instant: 100},
	}

	for _, body := range cases {
		buf := make([]byte, 1+body.Len())
		n := Encode(body, buf)
		if n != len(buf) {
			t.Errorf("%T: Encode returned %d, want %d", body, n, len(buf))
		}
		got, err := Decode(buf)
		if err != nil {
			t.Fatalf("%T: Decode error %v", body, err)
		}
		if !reflect.DeepEqual(got, body) {
			t.Errorf("%T: round trip mismatch: got %+v, want %+v", body, got, body)
		}
	}
}

func TestOpcodeString(t *testing.T) {
	if OpPhyUpdateInd.String() != "LL_PHY_UPDATE_IND" {
		t.Fatalf("String() = %q", OpPhyUpdateInd.String())
	}
	if Opcode(0x7F).String() != "LL_UNKNOWN" {
		t.Fatalf("String() for unknown opcode = %q", Opcode(0x7F).String())
	}
}

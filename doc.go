// Package llcp implements the Link Layer Control Procedure (LLCP) engine
// of a Bluetooth Low Energy controller: the per-connection state machine
// that negotiates connection parameters with a peer by exchanging LL
// control PDUs (LL_PHY_REQ, LL_FEATURE_REQ, LL_VERSION_IND, LL_ENC_REQ,
// LL_TERMINATE_IND, LL_LENGTH_REQ, LL_CONNECTION_UPDATE_IND, ...) per the
// Bluetooth Core Specification.
//
// STATUS
//
// This package is the link-layer control core only. It does not own a
// radio, does not schedule connection anchor points, and does not parse
// HCI commands beyond the procedure invariants those commands imply. Three
// external collaborators are assumed:
//
//   - a radio/PHY scheduler that drives connection events and performs
//     the actual over-the-air transmission/reception of the PDUs this
//     package produces and consumes,
//   - an HCI layer that turns host commands into calls on the entry
//     points in hci_entry.go,
//   - a pairing/SMP layer that supplies LTK/EDIV/RAND material to the
//     encryption procedure.
//
// USAGE
//
// A host creates one Controller (holding the shared ControllerConfig,
// context pool and notification pool) and one Connection per link. Each
// connection event, the host calls Connection.RunEvent, which steps the
// active procedures, delivers any PDUs received during the event to them,
// resolves collisions, emits host notifications, and returns the control
// PDUs to transmit.
package llcp

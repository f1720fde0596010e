package message

// State is the connection sub-protocol a packet belongs to. Packet IDs are
// only unique within one state.
type State uint8

const (
	StateHandshake State = 0
	StateStatus    State = 1
	StateLogin     State = 2
)

func (s State) String() string {
	switch s {
	case StateHandshake:
		return "Handshake"
	case StateStatus:
		return "Status"
	case StateLogin:
		return "Login"
	default:
		return "Unknown State"
	}
}

// Intention is the next state announced in the handshake, encoded as a VarInt.
type Intention int32

const (
	IntentionInvalid  Intention = 0
	IntentionStatus   Intention = 1
	IntentionLogin    Intention = 2
	IntentionTransfer Intention = 3
)

func (i Intention) String() string {
	switch i {
	case IntentionInvalid:
		return "Invalid Intention"
	case IntentionStatus:
		return "Status"
	case IntentionLogin:
		return "Login"
	case IntentionTransfer:
		return "Transfer"
	default:
		return "Unknown Intention"
	}
}

// NextState maps an intention to the state the connection switches to.
func (i Intention) NextState() State {
	switch i {
	case IntentionStatus:
		return StateStatus
	default:
		return StateLogin
	}
}

const (
	// returned by ID when a packet wrapper has no variant set
	InvalidID int32 = -1
)

package arbiter

type Group uint8

const (
	GroupInvalid  Group = 0
	GroupReport   Group = 1
	GroupDeadline Group = 2
)

func (g Group) String() string {
	switch g {
	case GroupInvalid:
		return "Invalid Group"
	case GroupReport:
		return "Report"
	case GroupDeadline:
		return "Deadline"
	default:
		return "Unknown Group"
	}
}

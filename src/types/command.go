package types

import "time"

type CmdKind int

const (
	GeneralSummonCmd CmdKind = iota
	PrivateSummonCmd
	ServiceSummonCmd
	FireAlarmCmd
	SetIssueCmd
	EmergencyCallCmd
)

func (k CmdKind) String() string {
	switch k {
	case GeneralSummonCmd:
		return "GeneralSummon"
	case PrivateSummonCmd:
		return "PrivateSummon"
	case ServiceSummonCmd:
		return "ServiceSummon"
	case FireAlarmCmd:
		return "FireAlarm"
	case SetIssueCmd:
		return "SetIssue"
	case EmergencyCallCmd:
		return "EmergencyCall"
	}
	return "Unknown"
}

// Command is one queued intake request.
type Command struct {
	Seq        uint64
	ReceivedAt time.Time
	Payload    CmdPayload
}

func (c Command) Kind() CmdKind {
	return c.Payload.Kind()
}

// CmdPayload is implemented only by the payload types below.
type CmdPayload interface {
	Kind() CmdKind
	isPayload()
}

type GeneralSummon struct {
	Origin      int
	Destination int
}

type PrivateSummon struct {
	ElevatorID  int
	Origin      int
	Destination int
}

type ServiceSummon struct {
	Origin        int
	Destination   int
	HasAccessCard bool
}

type FireAlarm struct {
	Active bool
}

type SetIssue struct {
	ElevatorID int
	HasIssue   bool
}

type EmergencyCall struct {
	ElevatorID int
}

func (GeneralSummon) Kind() CmdKind { return GeneralSummonCmd }
func (PrivateSummon) Kind() CmdKind { return PrivateSummonCmd }
func (ServiceSummon) Kind() CmdKind { return ServiceSummonCmd }
func (FireAlarm) Kind() CmdKind     { return FireAlarmCmd }
func (SetIssue) Kind() CmdKind      { return SetIssueCmd }
func (EmergencyCall) Kind() CmdKind { return EmergencyCallCmd }

func (GeneralSummon) isPayload() {}
func (PrivateSummon) isPayload() {}
func (ServiceSummon) isPayload() {}
func (FireAlarm) isPayload()     {}
func (SetIssue) isPayload()      {}
func (EmergencyCall) isPayload() {}

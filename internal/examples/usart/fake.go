package usart

import "github.com/roach88/fixturekit/internal/ledger"

// Fakes implements Model, Hardware and Scheduler from one ledger, so the
// relative order of calls across all three is checked.
type Fakes struct {
	GetBaudRateRegisterSetting *ledger.Func0[uint8]
	GetWakeupMessage           *ledger.Func0[string]
	GetFormattedTemperature    *ledger.Func0[string]
	HardwareInit               *ledger.Proc1[uint8]
	TransmitStringFn           *ledger.Proc1[string]
	DoUsartFn                  *ledger.Func0[bool]

	ledger *ledger.Ledger
}

// NewFakes binds every collaborator to l.
func NewFakes(l *ledger.Ledger) *Fakes {
	return &Fakes{
		GetBaudRateRegisterSetting: ledger.NewFunc0[uint8](l, "UsartModel_GetBaudRateRegisterSetting"),
		GetWakeupMessage:           ledger.NewFunc0[string](l, "UsartModel_GetWakeupMessage"),
		GetFormattedTemperature:    ledger.NewFunc0[string](l, "UsartModel_GetFormattedTemperature"),
		HardwareInit:               ledger.NewProc1[uint8](l, "UsartHardware_Init"),
		TransmitStringFn:           ledger.NewProc1[string](l, "UsartHardware_TransmitString"),
		DoUsartFn:                  ledger.NewFunc0[bool](l, "TaskScheduler_DoUsart"),
		ledger:                     l,
	}
}

func (f *Fakes) BaudRateRegisterSetting() uint8 {
	f.ledger.Helper()
	return f.GetBaudRateRegisterSetting.Call()
}

func (f *Fakes) WakeupMessage() string {
	f.ledger.Helper()
	return f.GetWakeupMessage.Call()
}

func (f *Fakes) FormattedTemperature() string {
	f.ledger.Helper()
	return f.GetFormattedTemperature.Call()
}

func (f *Fakes) Init(setting uint8) {
	f.ledger.Helper()
	f.HardwareInit.Call(setting)
}

func (f *Fakes) TransmitString(s string) {
	f.ledger.Helper()
	f.TransmitStringFn.Call(s)
}

func (f *Fakes) DoUsart() bool {
	f.ledger.Helper()
	return f.DoUsartFn.Call()
}

// Conductor returns a Conductor whose collaborators are all f.
func (f *Fakes) Conductor() *Conductor {
	return &Conductor{Model: f, Hardware: f, Scheduler: f}
}

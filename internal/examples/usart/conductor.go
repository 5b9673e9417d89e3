// Package usart is the conductor example: a coordinator whose every
// collaborator is faked, so tests pin down the exact order of calls.
package usart

// Model supplies configuration and formatted readings.
type Model interface {
	BaudRateRegisterSetting() uint8
	WakeupMessage() string
	FormattedTemperature() string
}

// Hardware drives the serial port.
type Hardware interface {
	Init(baudRateRegisterSetting uint8)
	TransmitString(s string)
}

// Scheduler decides when the conductor has work to do.
type Scheduler interface {
	DoUsart() bool
}

// Conductor wires the model to the hardware.
type Conductor struct {
	Model     Model
	Hardware  Hardware
	Scheduler Scheduler
}

// Init configures the port and sends the wakeup message.
func (c *Conductor) Init() {
	c.Hardware.Init(c.Model.BaudRateRegisterSetting())
	c.Hardware.TransmitString(c.Model.WakeupMessage())
}

// Run transmits the current temperature when the scheduler says it is time.
func (c *Conductor) Run() {
	if c.Scheduler.DoUsart() {
		c.Hardware.TransmitString(c.Model.FormattedTemperature())
	}
}

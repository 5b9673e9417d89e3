package usart

import (
	"runtime"

	"github.com/roach88/fixturekit/internal/harness"
)

// ConductorSuite returns the conductor tests.
func ConductorSuite() harness.Suite {
	var fakes *Fakes
	_, file, _, _ := runtime.Caller(0)

	return harness.Suite{
		Name: "usart_conductor",
		File: file,
		SetUp: func(t *harness.T) {
			fakes = NewFakes(t.Ledger())
		},
		Tests: []harness.Test{
			{Name: "ShouldInitializeHardwareWhenInitCalled", Body: func(t *harness.T) {
				fakes.GetBaudRateRegisterSetting.ExpectAndReturn(4)
				fakes.HardwareInit.Expect(4)
				fakes.GetWakeupMessage.ExpectAndReturn("Hey there!")
				fakes.TransmitStringFn.Expect("Hey there!")

				fakes.Conductor().Init()
			}},
			{Name: "RunShouldNotDoAnythingIfSchedulerSaysItIsNotTimeYet", Body: func(t *harness.T) {
				fakes.DoUsartFn.ExpectAndReturn(false)

				fakes.Conductor().Run()
			}},
			{Name: "RunShouldGetCurrentTemperatureAndTransmitIfSchedulerSaysItIsTime", Body: func(t *harness.T) {
				fakes.DoUsartFn.ExpectAndReturn(true)
				fakes.GetFormattedTemperature.ExpectAndReturn("hey there")
				fakes.TransmitStringFn.Expect("hey there")

				fakes.Conductor().Run()
			}},
		},
	}
}

// BaudRateSuite returns the register calculator tests. No fakes needed.
func BaudRateSuite() harness.Suite {
	_, file, _, _ := runtime.Caller(0)

	return harness.Suite{
		Name: "usart_baud_rate",
		File: file,
		Tests: []harness.Test{
			{Name: "CalculateRegisterSettingAppropriately", Body: func(t *harness.T) {
				// BaudRate = MCK / (CD x 16)
				t.AssertEqual(uint8(26), BaudRateRegisterSetting(48000000, 115200))
				t.AssertEqual(uint8(6), BaudRateRegisterSetting(3686400, 38400))
				t.AssertEqual(uint8(23), BaudRateRegisterSetting(14318180, 38400))
				t.AssertEqual(uint8(20), BaudRateRegisterSetting(12000000, 38400))
				t.AssertEqual(uint8(13), BaudRateRegisterSetting(12000000, 56800))
			}},
		},
	}
}

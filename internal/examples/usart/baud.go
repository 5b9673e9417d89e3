package usart

// BaudRateRegisterSetting returns the clock divider for baudRate, rounded
// half up: masterClock / (16 * baudRate).
func BaudRateRegisterSetting(masterClock, baudRate uint32) uint8 {
	tenths := (masterClock * 10) / (baudRate * 16)
	setting := tenths / 10
	if tenths%10 >= 5 {
		setting++
	}
	return uint8(setting)
}

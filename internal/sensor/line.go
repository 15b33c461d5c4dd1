package sensor

func lineValue(device DeviceConfig, on bool) int {
	if on != device.NormallyOn {
		return 1
	}

	return 0
}

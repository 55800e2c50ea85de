package reputation

// 静态黑白名单，后续接入远端信誉库后作为兜底数据

func knownRuggers() map[string]struct{} {
	return map[string]struct{}{
		"CUhvAj1ChcE9q35Q8pjYTpA3A5b6M9F2dB3Y8mK1zXpq":   {},
		"BundlerExtremeScamZ9Y8X7W6V5U4T3S2R1Q0P9O8N7M6": {},
		"HoneypotMasterX1Y2Z3A4B5C6D7E8F9G0H1I2J3K4L5":   {},
	}
}

func knownLegitDevs() map[string]struct{} {
	return map[string]struct{}{
		"LegitDev1A2B3C4D5E6F7G8H9I0J1K2L3M4N5O6P7Q8R9":    {},
		"TrustedDev2B3C4D5E6F7G8H9I0J1K2L3M4N5O6P7Q8R9S0":  {},
	}
}

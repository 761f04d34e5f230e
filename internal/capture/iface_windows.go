package capture

// Npcap device names look like \Device\NPF_{GUID}
const deviceNameRunes = `\{}`

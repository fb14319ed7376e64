// internal/modem/parse.go
package modem

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// AT dialect, RAK811-class LoRaWAN modem:
//
//	-> at+join
//	<- OK Join Success
//	-> at+send=lora:<port>:<hex>
//	<- OK
//	<- at+recv=<port>,<rssi>,<snr>,<len>[:<hex>]   (unsolicited)
//
// Responses start with "OK" or "ERROR"; at+recv lines arrive on their
// own whenever the network delivers a downlink.

const recvPrefix = "at+recv="

// Downlink is one parsed at+recv line.
type Downlink struct {
	Port uint8
	Data []byte
}

// sendCommand builds the uplink command for one frame.
func sendCommand(port uint8, payload []byte) string {
	return fmt.Sprintf("at+send=lora:%d:%s", port, hex.EncodeToString(payload))
}

// parseRecv parses an unsolicited downlink line. A zero-length downlink
// has no colon section.
func parseRecv(line string) (Downlink, error) {
	body, ok := strings.CutPrefix(line, recvPrefix)
	if !ok {
		return Downlink{}, fmt.Errorf("modem: not a recv line: %q", line)
	}

	meta, hexData, _ := strings.Cut(body, ":")
	fields := strings.Split(meta, ",")
	if len(fields) != 4 {
		return Downlink{}, fmt.Errorf("modem: malformed recv metadata: %q", line)
	}

	port, err := strconv.ParseUint(fields[0], 10, 8)
	if err != nil {
		return Downlink{}, fmt.Errorf("modem: bad recv port %q: %w", fields[0], err)
	}

	length, err := strconv.Atoi(fields[3])
	if err != nil {
		return Downlink{}, fmt.Errorf("modem: bad recv length %q: %w", fields[3], err)
	}

	var data []byte
	if hexData != "" {
		data, err = hex.DecodeString(hexData)
		if err != nil {
			return Downlink{}, fmt.Errorf("modem: bad recv payload: %w", err)
		}
	}
	if len(data) != length {
		return Downlink{}, fmt.Errorf("modem: recv length %d does not match payload %d",
			length, len(data))
	}

	return Downlink{Port: uint8(port), Data: data}, nil
}

func isErrorResponse(line string) bool {
	return strings.HasPrefix(line, "ERROR")
}

package board

import (
	"fmt"

	"github.com/jochenvg/go-udev"
)

// SerialBoard describes one candidate serial device found by Discover,
// enough information for a caller to decide whether to OpenUART it.
type SerialBoard struct {
	DevNode      string
	VendorID     string
	ProductID    string
	Serial       string
	Manufacturer string
}

// Discover enumerates tty devices on the system, the Linux-native
// equivalent of a board-bringup script grepping dmesg for "ttyUSB" /
// "ttyACM" after plugging in a programmer. It exists so a demo binary
// can offer "pick your board" instead of hard-coding a device path.
func Discover() ([]SerialBoard, error) {
	u := udev.Udev{}
	e := u.NewEnumerate()
	if err := e.AddMatchSubsystem("tty"); err != nil {
		return nil, fmt.Errorf("board: match tty subsystem: %w", err)
	}

	devices, err := e.Devices()
	if err != nil {
		return nil, fmt.Errorf("board: enumerate tty devices: %w", err)
	}

	var boards []SerialBoard
	for _, d := range devices {
		node := d.Devnode()
		if node == "" {
			continue
		}
		parent := d.ParentWithSubsystemDevtype("usb", "usb_device")
		b := SerialBoard{DevNode: node}
		if parent != nil {
			b.VendorID = parent.PropertyValue("ID_VENDOR_ID")
			b.ProductID = parent.PropertyValue("ID_MODEL_ID")
			b.Serial = parent.PropertyValue("ID_SERIAL_SHORT")
			b.Manufacturer = parent.PropertyValue("ID_VENDOR")
		}
		boards = append(boards, b)
	}
	return boards, nil
}

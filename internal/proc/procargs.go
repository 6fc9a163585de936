package proc

import "encoding/binary"

// parseProcArgs decodes a kern.procargs2 buffer: a little-endian argc, the
// executable path, NUL padding, then argc NUL-terminated arguments.
func parseProcArgs(buf []byte) []string {
	if len(buf) < 4 {
		return nil
	}
	argc := int(binary.LittleEndian.Uint32(buf[:4]))
	if argc <= 0 || argc > 4096 {
		return nil
	}

	pos := 4
	for pos < len(buf) && buf[pos] != 0 {
		pos++
	}
	for pos < len(buf) && buf[pos] == 0 {
		pos++
	}

	args := make([]string, 0, argc)
	for i := 0; i < argc && pos < len(buf); i++ {
		start := pos
		for pos < len(buf) && buf[pos] != 0 {
			pos++
		}
		args = append(args, string(buf[start:pos]))
		pos++
	}
	if len(args) == 0 {
		return nil
	}
	return args
}

package tree

import (
	"strconv"
	"strings"
)

// SNBT returns the stringified form of v, as used by Minecraft commands.
func SNBT(v Value) string {
	var sb strings.Builder
	writeSNBT(&sb, v)
	return sb.String()
}

func isBare(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_', r == '-', r == '.', r == '+':
		default:
			return false
		}
	}
	return true
}

func quote(sb *strings.Builder, s string) {
	sb.WriteByte('"')
	for _, r := range s {
		if r == '"' || r == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	sb.WriteByte('"')
}

func float(f float64, bits int) string {
	return strconv.FormatFloat(f, 'g', -1, bits)
}

func writeSNBT(sb *strings.Builder, v Value) {
	switch v := v.(type) {
	case Byte:
		sb.WriteString(strconv.FormatInt(int64(v), 10))
		sb.WriteByte('b')
	case Short:
		sb.WriteString(strconv.FormatInt(int64(v), 10))
		sb.WriteByte('s')
	case Int:
		sb.WriteString(strconv.FormatInt(int64(v), 10))
	case Long:
		sb.WriteString(strconv.FormatInt(int64(v), 10))
		sb.WriteByte('L')
	case Float:
		sb.WriteString(float(float64(v), 32))
		sb.WriteByte('f')
	case Double:
		sb.WriteString(float(float64(v), 64))
		sb.WriteByte('d')
	case String:
		quote(sb, string(v))

	case ByteArray:
		sb.WriteString("[B;")
		for i, n := range v {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.FormatInt(int64(int8(n)), 10))
			sb.WriteByte('b')
		}
		sb.WriteByte(']')

	case IntArray:
		sb.WriteString("[I;")
		for i, n := range v {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.FormatInt(int64(n), 10))
		}
		sb.WriteByte(']')

	case LongArray:
		sb.WriteString("[L;")
		for i, n := range v {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.FormatInt(n, 10))
			sb.WriteByte('L')
		}
		sb.WriteByte(']')

	case List:
		sb.WriteByte('[')
		for i, el := range v.Values {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeSNBT(sb, el)
		}
		sb.WriteByte(']')

	case Compound:
		sb.WriteByte('{')
		for i, f := range v {
			if i > 0 {
				sb.WriteByte(',')
			}
			if isBare(f.Name) {
				sb.WriteString(f.Name)
			} else {
				quote(sb, f.Name)
			}
			sb.WriteByte(':')
			writeSNBT(sb, f.Value)
		}
		sb.WriteByte('}')

	default:
		sb.WriteString("null")
	}
}

package wire

const (
	kindString   = byte(1)
	kindBinary   = byte(2)
	kindBool     = byte(3)
	kindInt64    = byte(4)
	kindFloat64  = byte(5)
	kindDocument = byte(6)
	kindArray    = byte(7)
	kindObjectID = byte(8)
	kindNull     = byte(9)
)

// Package message defines the single wire record the kernel's syscall ABI,
// dispatcher, filesystem and process subsystems all speak: a Message is both
// a supervisor-call request and, once a handler runs, its own reply.
package message

// Type is the message discriminant. Ordinals are stable wire values: user
// binaries encode them directly (see the SVC ABI in internal/trap), so they
// are pinned with explicit values rather than left to iota.
type Type int

const (
	NONE         Type = 0
	OPEN         Type = 1
	READ         Type = 2
	WRITE        Type = 3
	CLOSE        Type = 4
	STAT         Type = 5
	BIND         Type = 6
	MOUNT        Type = 7
	FORK         Type = 8
	EXEC         Type = 9
	WAIT         Type = 10
	PIPE         Type = 11
	READ_DIR     Type = 12
	CREATE       Type = 13
	MKDIR        Type = 14
	GETCWD       Type = 15
	CHDIR        Type = 16
	COPY         Type = 17
	REMOVE       Type = 18
	MOVE         Type = 19
	UNBIND       Type = 20
	PUTC         Type = 21
	GETC         Type = 22
	PUTS         Type = 23
)

var typeNames = map[Type]string{
	NONE: "NONE", OPEN: "OPEN", READ: "READ", WRITE: "WRITE", CLOSE: "CLOSE",
	STAT: "STAT", BIND: "BIND", MOUNT: "MOUNT", FORK: "FORK", EXEC: "EXEC",
	WAIT: "WAIT", PIPE: "PIPE", READ_DIR: "READ_DIR", CREATE: "CREATE",
	MKDIR: "MKDIR", GETCWD: "GETCWD", CHDIR: "CHDIR", COPY: "COPY",
	REMOVE: "REMOVE", MOVE: "MOVE", UNBIND: "UNBIND", PUTC: "PUTC",
	GETC: "GETC", PUTS: "PUTS",
}

func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return "Type(?)"
}

// Flags bits, set on the outgoing Message by the caller.
type Flags uint32

const (
	// NONBLOCK makes a RECEIVE fail immediately on an empty queue instead
	// of blocking the caller.
	NONBLOCK Flags = 1 << 0
)

// DirentKind distinguishes a directory entry's backend-reported type.
type DirentKind int

const (
	KindFile DirentKind = iota
	KindDir
)

// Dirent is produced only by READ_DIR; it is never persisted by the VFS.
type Dirent struct {
	Name string
	Kind DirentKind
	Size int64
}

// Message is the universal request/reply record. A Message is borrowed by
// the dispatcher: handlers mutate the reply fields in place rather than
// allocate a new one, matching the original kernel's single wide record.
//
// Invariant: after a successful call, at least one of Result, FD, PID,
// Status, Size or DirentCount is meaningfully set — see each handler's
// contract in internal/dispatch for which field that is.
type Message struct {
	Type Type

	Path string   // resolved through the namespace before reaching the VFS
	Argv []string // EXEC argument vector

	Data []byte // caller-owned buffer; nil means "use handler default"
	Size int     // in: capacity of Data: out: bytes actually used

	Flags Flags

	FD     int
	PID    int
	Status int

	Entry uint64 // EXEC entry point

	Dirents     []Dirent
	DirentCount int

	Char byte
	Str  string

	// Result carries the dispatcher's generic return value (bytes
	// transferred, a count, 0/-1) for callers that don't care which
	// specific field a handler also populated.
	Result int64
}

// Reset clears the fields that are reply-only for every message type,
// leaving Type, Path, Argv, Data, Size untouched, along with FD, Char and
// Str — those three are request-side input for some types (FD for
// READ/WRITE/CLOSE, Char for PUTC, Str for PUTS/BIND/MOUNT) and reply-side
// output for others (FD for OPEN/CREATE, Char for GETC), so Dispatch
// cannot blindly zero them before a handler ever reads them. Handlers
// that use one of those three as their reply field simply overwrite it;
// Dispatch calls Reset before every call so a reused Message never leaks
// a stale PID/Status/Entry/Dirents/Result from a previous dispatch.
func (m *Message) Reset() {
	m.PID = 0
	m.Status = 0
	m.Entry = 0
	m.Dirents = nil
	m.DirentCount = 0
	m.Result = 0
}

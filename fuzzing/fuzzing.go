package fuzzing

import "testing"

//go:generate mockgen -source fuzzing.go -destination fuzzing_mocks.go -package fuzzing

// TestingT is the subset of testing.T available to fuzzing campaigns. It
// allows operations to report failures and campaigns to allocate temporary
// resources without binding this package to the concrete testing type.
type TestingT interface {
	Errorf(format string, args ...any)
	Fatalf(format string, args ...any)
	TempDir() string
}

// TestingF is the subset of testing.F used to drive a fuzzing campaign:
// seeding the corpus and launching the fuzzing loop. It is implemented by
// *testing.F and mocked in tests of this package.
type TestingF interface {
	Add(args ...any)
	Fuzz(ff any)
}

// Operation is a single step of a fuzzing campaign. Implementations carry
// their payload and know how to apply themselves to the campaign's context
// and how to serialise themselves into the byte stream the fuzzer mutates.
type Operation[C any] interface {
	// Apply executes this operation on the given context, reporting
	// failures to the given test handle.
	Apply(t TestingT, context *C)
	// Serialise encodes this operation, opcode first, for the fuzzer to
	// mutate and for seeding the corpus.
	Serialise() []byte
}

// OperationSequence is a chain of operations seeded into the fuzzer's corpus
// as one input.
type OperationSequence[C any] []Operation[C]

// Serialise encodes the sequence as the concatenation of its operations.
func (s OperationSequence[C]) Serialise() []byte {
	var res []byte
	for _, op := range s {
		res = append(res, op.Serialise()...)
	}
	return res
}

// Campaign drives one fuzzing session. Init provides the seed corpus,
// CreateContext and Cleanup frame every fuzzing loop, and Deserialize turns
// a fuzzer-mutated byte stream back into executable operations.
type Campaign[C any] interface {
	// Init returns the operation sequences seeding the corpus.
	Init() []OperationSequence[C]
	// CreateContext instantiates the state shared by the operations of one
	// fuzzing loop.
	CreateContext(t TestingT) *C
	// Deserialize parses a, possibly fuzzer-mutated, byte stream into the
	// operations to execute.
	Deserialize(rawData []byte) []Operation[C]
	// Cleanup runs after every fuzzing loop, typically verifying the final
	// context state and releasing resources.
	Cleanup(t TestingT, context *C)
}

// Fuzz seeds the given testing handle with the campaign's operation
// sequences and runs the fuzzing loop: every generated input is deserialized
// into operations, applied in order to a fresh context, and concluded by the
// campaign's cleanup.
func Fuzz[C any](f TestingF, campaign Campaign[C]) {
	for _, sequence := range campaign.Init() {
		f.Add(sequence.Serialise())
	}
	f.Fuzz(func(t *testing.T, rawData []byte) {
		context := campaign.CreateContext(t)
		for _, op := range campaign.Deserialize(rawData) {
			op.Apply(t, context)
		}
		campaign.Cleanup(t, context)
	})
}

// OpsFactoryRegistry maps opcodes to factories producing the registered
// operations, either directly with a typed payload or by consuming bytes
// from a raw input stream.
type OpsFactoryRegistry[T ~byte, C any] map[T]*opFactory[T, C]

// NewRegistry creates an empty operation registry.
func NewRegistry[T ~byte, C any]() OpsFactoryRegistry[T, C] {
	return make(OpsFactoryRegistry[T, C])
}

type opFactory[T ~byte, C any] struct {
	create func(data any) Operation[C]
	read   func(raw *[]byte) Operation[C]
}

// CreateDataOp instantiates the operation registered under the given opcode
// with the given payload. The payload must have the type the operation was
// registered with.
func (r OpsFactoryRegistry[T, C]) CreateDataOp(opType T, data any) Operation[C] {
	return r[opType].create(data)
}

// CreateNoDataOp instantiates the payload-free operation registered under
// the given opcode.
func (r OpsFactoryRegistry[T, C]) CreateNoDataOp(opType T) Operation[C] {
	return r[opType].create(nil)
}

// ReadNextOp consumes one operation from the head of the raw stream and
// returns the remaining bytes. Opcodes without a registered factory yield a
// nil operation, letting callers skip bytes the fuzzer has mutated into
// unknown codes. An empty stream yields a nil operation as well.
func (r OpsFactoryRegistry[T, C]) ReadNextOp(raw []byte) (T, Operation[C], []byte) {
	if len(raw) == 0 {
		var none T
		return none, nil, raw
	}
	opType := T(raw[0])
	raw = raw[1:]
	factory, exists := r[opType]
	if !exists {
		return opType, nil, raw
	}
	op := factory.read(&raw)
	return opType, op, raw
}

// ReadAllOps consumes the whole raw stream, dropping unknown opcodes.
func (r OpsFactoryRegistry[T, C]) ReadAllOps(raw []byte) []Operation[C] {
	var ops []Operation[C]
	for len(raw) > 0 {
		var op Operation[C]
		_, op, raw = r.ReadNextOp(raw)
		if op != nil {
			ops = append(ops, op)
		}
	}
	return ops
}

// RegisterDataOp registers an operation carrying a payload of type D under
// the given opcode. The serialise and deserialise functions define the
// payload's byte layout; deserialise consumes its bytes from the given
// stream and must tolerate truncated input. The apply function executes the
// operation and receives the test handle with the type it was declared
// with, allowing campaigns to use either TestingT or *testing.T directly.
func RegisterDataOp[T ~byte, C any, D any, TT TestingT](
	registry OpsFactoryRegistry[T, C],
	opType T,
	serialise func(data D) []byte,
	deserialise func(raw *[]byte) D,
	apply func(opType T, data D, t TT, context *C),
) {
	registry[opType] = &opFactory[T, C]{
		create: func(data any) Operation[C] {
			return &dataOp[T, C, D, TT]{opType, data.(D), serialise, apply}
		},
		read: func(raw *[]byte) Operation[C] {
			return &dataOp[T, C, D, TT]{opType, deserialise(raw), serialise, apply}
		},
	}
}

// RegisterNoDataOp registers a payload-free operation under the given
// opcode.
func RegisterNoDataOp[T ~byte, C any, TT TestingT](
	registry OpsFactoryRegistry[T, C],
	opType T,
	apply func(opType T, t TT, context *C),
) {
	op := &noDataOp[T, C, TT]{opType, apply}
	registry[opType] = &opFactory[T, C]{
		create: func(any) Operation[C] { return op },
		read:   func(*[]byte) Operation[C] { return op },
	}
}

type dataOp[T ~byte, C any, D any, TT TestingT] struct {
	opType    T
	data      D
	serialise func(D) []byte
	apply     func(T, D, TT, *C)
}

func (o *dataOp[T, C, D, TT]) Apply(t TestingT, context *C) {
	o.apply(o.opType, o.data, t.(TT), context)
}

func (o *dataOp[T, C, D, TT]) Serialise() []byte {
	return append([]byte{byte(o.opType)}, o.serialise(o.data)...)
}

type noDataOp[T ~byte, C any, TT TestingT] struct {
	opType T
	apply  func(T, TT, *C)
}

func (o *noDataOp[T, C, TT]) Apply(t TestingT, context *C) {
	o.apply(o.opType, t.(TT), context)
}

func (o *noDataOp[T, C, TT]) Serialise() []byte {
	return []byte{byte(o.opType)}
}

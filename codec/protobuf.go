package codec

import "google.golang.org/protobuf/proto"

// Protobuf serializes proto messages. Construct with NewProtobuf and a
// message constructor, e.g.
//
//	codec.NewProtobuf(func() *mypb.User { return &mypb.User{} })
type Protobuf[M proto.Message] struct {
	new func() M
}

func NewProtobuf[M proto.Message](ctor func() M) Protobuf[M] {
	return Protobuf[M]{new: ctor}
}

func (c Protobuf[M]) Encode(v M) ([]byte, error) {
	return proto.Marshal(v)
}

func (c Protobuf[M]) Decode(b []byte) (M, error) {
	m := c.new()
	err := proto.Unmarshal(b, m)
	return m, err
}

package client

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
)

const (
	MsgMove      = "move"
	MsgHeartbeat = "heartbeat"
	MsgState     = "state"
)

// Envelope JSON 信封（ws / redis 使用）
type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p"`
}

// MoveMessage 本地玩家位置上报
type MoveMessage struct {
	ID ClientID `json:"id"`
	X  float64  `json:"x"`
	Y  float64  `json:"y"`
}

// HeartbeatMessage 无移动时的存活信号
type HeartbeatMessage struct {
	ID ClientID `json:"id"`
}

// PlayerState 快照中的单个玩家
type PlayerState struct {
	ID ClientID `json:"id"`
	X  float64  `json:"x"`
	Y  float64  `json:"y"`
}

// StateMessage 权威端广播的快照
type StateMessage struct {
	Players []PlayerState `json:"players"`
}

// Snapshot 转换为以 ID 为键的增量，同一 ID 重复出现时后者覆盖前者
func (m StateMessage) Snapshot() Snapshot {
	out := make(Snapshot, len(m.Players))
	for _, p := range m.Players {
		out[p.ID] = Position{X: p.X, Y: p.Y}
	}
	return out
}

// NewStateMessage 由增量构建快照消息（测试与中继使用）
func NewStateMessage(s Snapshot) StateMessage {
	m := StateMessage{Players: make([]PlayerState, 0, len(s))}
	for id, p := range s {
		m.Players = append(m.Players, PlayerState{ID: id, X: p.X, Y: p.Y})
	}
	return m
}

func Encode(t string, payload any) ([]byte, error) {
	if t == "" {
		return nil, fmt.Errorf("encode: empty envelope type")
	}
	pb, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{T: t, P: pb})
}

func DecodeEnvelope(b []byte) (Envelope, error) {
	if len(b) == 0 {
		return Envelope{}, fmt.Errorf("decode: empty envelope")
	}
	var e Envelope
	if err := json.Unmarshal(b, &e); err != nil {
		return Envelope{}, err
	}
	return e, nil
}

func DecodePayload[T any](env Envelope) (T, error) {
	var out T
	if len(env.P) == 0 {
		return out, fmt.Errorf("empty payload for type %q", env.T)
	}
	err := json.Unmarshal(env.P, &out)
	return out, err
}

// decodeStateJSON 只关心 state 消息，其余类型返回 ok=false
func decodeStateJSON(b []byte) (Snapshot, bool, error) {
	env, err := DecodeEnvelope(b)
	if err != nil {
		return nil, false, err
	}
	if env.T != MsgState {
		return nil, false, nil
	}
	st, err := DecodePayload[StateMessage](env)
	if err != nil {
		return nil, false, err
	}
	return st.Snapshot(), true, nil
}

// UDP 二进制格式（小端）：
//   move      type:u8 | id:i32 | x:f32 | y:f32
//   heartbeat type:u8 | id:i32
//   state     type:u8 | count:u16 | (id:i32 x:f32 y:f32)*count
const (
	binMove      byte = 1
	binHeartbeat byte = 2
	binState     byte = 3
)

const maxStatePlayers = math.MaxUint16

func WriteMove(buf *bytes.Buffer, id ClientID, x, y float64) {
	buf.WriteByte(binMove)
	binary.Write(buf, binary.LittleEndian, int32(id))
	binary.Write(buf, binary.LittleEndian, float32(x))
	binary.Write(buf, binary.LittleEndian, float32(y))
}

func WriteHeartbeat(buf *bytes.Buffer, id ClientID) {
	buf.WriteByte(binHeartbeat)
	binary.Write(buf, binary.LittleEndian, int32(id))
}

// WriteState 编码快照，超过 u16 上限的部分被截断
func WriteState(buf *bytes.Buffer, players []PlayerState) {
	if len(players) > maxStatePlayers {
		players = players[:maxStatePlayers]
	}
	buf.WriteByte(binState)
	binary.Write(buf, binary.LittleEndian, uint16(len(players)))
	for _, p := range players {
		binary.Write(buf, binary.LittleEndian, int32(p.ID))
		binary.Write(buf, binary.LittleEndian, float32(p.X))
		binary.Write(buf, binary.LittleEndian, float32(p.Y))
	}
}

// state 记录：id:int32 x:float32 y:float32
const stateRecordSize = 12

// ReadState 解析 state 数据报；非 state 类型返回 ok=false
func ReadState(b []byte) (Snapshot, bool, error) {
	if len(b) < 1 {
		return nil, false, fmt.Errorf("datagram too small")
	}
	if b[0] != binState {
		return nil, false, nil
	}
	r := bytes.NewReader(b[1:])
	var count uint16
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, false, err
	}
	if r.Len() < stateRecordSize*int(count) {
		return nil, false, fmt.Errorf("state datagram truncated: %d records need %d bytes, have %d",
			count, stateRecordSize*int(count), r.Len())
	}
	out := make(Snapshot, count)
	for i := 0; i < int(count); i++ {
		var rec struct {
			ID   int32
			X, Y float32
		}
		if err := binary.Read(r, binary.LittleEndian, &rec); err != nil {
			return nil, false, fmt.Errorf("state record %d: %w", i, err)
		}
		out[ClientID(rec.ID)] = Position{X: float64(rec.X), Y: float64(rec.Y)}
	}
	return out, true, nil
}

// ReadMove 解析 move 数据报（测试与中继使用）
func ReadMove(b []byte) (MoveMessage, error) {
	if len(b) < 13 || b[0] != binMove {
		return MoveMessage{}, fmt.Errorf("not a move datagram")
	}
	id := int32(binary.LittleEndian.Uint32(b[1:5]))
	x := math.Float32frombits(binary.LittleEndian.Uint32(b[5:9]))
	y := math.Float32frombits(binary.LittleEndian.Uint32(b[9:13]))
	return MoveMessage{ID: ClientID(id), X: float64(x), Y: float64(y)}, nil
}

// ReadHeartbeat 解析 heartbeat 数据报
func ReadHeartbeat(b []byte) (HeartbeatMessage, error) {
	if len(b) < 5 || b[0] != binHeartbeat {
		return HeartbeatMessage{}, fmt.Errorf("not a heartbeat datagram")
	}
	return HeartbeatMessage{ID: ClientID(int32(binary.LittleEndian.Uint32(b[1:5])))}, nil
}

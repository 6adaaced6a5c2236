// Package xray models the remote Xray configuration document and the
// read/modify/write cycle against it.
package xray

import "encoding/json"

// 面板只认识文档中与客户端管理相关的字段。其余内容（端口、流控、
// 路由、出站等）原样保留：重写配置时丢字段比写旧数据更危险，
// 残缺的文档会让 Xray 无法启动。

// Client 是 inbound 客户端列表中的一条记录
type Client struct {
	ID    string
	Level int
	Email string

	extra map[string]json.RawMessage
}

// Settings 是 inbound 的 settings 块
type Settings struct {
	Clients []Client

	hasClients bool
	extra      map[string]json.RawMessage
}

// Inbound 是一个协议监听入口
type Inbound struct {
	Protocol string
	Settings *Settings

	extra map[string]json.RawMessage
}

// Document 是整个 Xray 配置文档
type Document struct {
	Inbounds []*Inbound

	extra map[string]json.RawMessage
}

// HasClients 报告该 inbound 是否带有客户端列表（空列表也算有）
func (in *Inbound) HasClients() bool {
	return in.Settings != nil && in.Settings.hasClients
}

// popField 从原始字段表中取出一个已建模字段
func popField(m map[string]json.RawMessage, key string, v interface{}) (bool, error) {
	raw, ok := m[key]
	if !ok {
		return false, nil
	}
	delete(m, key)
	if err := json.Unmarshal(raw, v); err != nil {
		return true, err
	}
	return true, nil
}

func setField(m map[string]json.RawMessage, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m[key] = raw
	return nil
}

func cloneRaw(m map[string]json.RawMessage) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(m)+4)
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (c *Client) UnmarshalJSON(data []byte) error {
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if _, err := popField(fields, "id", &c.ID); err != nil {
		return err
	}
	if _, err := popField(fields, "level", &c.Level); err != nil {
		return err
	}
	if _, err := popField(fields, "email", &c.Email); err != nil {
		return err
	}
	c.extra = fields
	return nil
}

func (c Client) MarshalJSON() ([]byte, error) {
	fields := cloneRaw(c.extra)
	if err := setField(fields, "id", c.ID); err != nil {
		return nil, err
	}
	if err := setField(fields, "level", c.Level); err != nil {
		return nil, err
	}
	if err := setField(fields, "email", c.Email); err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}

func (s *Settings) UnmarshalJSON(data []byte) error {
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	present, err := popField(fields, "clients", &s.Clients)
	if err != nil {
		return err
	}
	s.hasClients = present
	s.extra = fields
	return nil
}

func (s Settings) MarshalJSON() ([]byte, error) {
	fields := cloneRaw(s.extra)
	if s.hasClients {
		clients := s.Clients
		if clients == nil {
			clients = []Client{}
		}
		if err := setField(fields, "clients", clients); err != nil {
			return nil, err
		}
	}
	return json.Marshal(fields)
}

func (in *Inbound) UnmarshalJSON(data []byte) error {
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if _, err := popField(fields, "protocol", &in.Protocol); err != nil {
		return err
	}
	if _, err := popField(fields, "settings", &in.Settings); err != nil {
		return err
	}
	in.extra = fields
	return nil
}

func (in Inbound) MarshalJSON() ([]byte, error) {
	fields := cloneRaw(in.extra)
	if err := setField(fields, "protocol", in.Protocol); err != nil {
		return nil, err
	}
	if in.Settings != nil {
		if err := setField(fields, "settings", in.Settings); err != nil {
			return nil, err
		}
	}
	return json.Marshal(fields)
}

func (d *Document) UnmarshalJSON(data []byte) error {
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if _, err := popField(fields, "inbounds", &d.Inbounds); err != nil {
		return err
	}
	d.extra = fields
	return nil
}

func (d Document) MarshalJSON() ([]byte, error) {
	fields := cloneRaw(d.extra)
	inbounds := d.Inbounds
	if inbounds == nil {
		inbounds = []*Inbound{}
	}
	if err := setField(fields, "inbounds", inbounds); err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}

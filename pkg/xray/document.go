package xray

// DefaultProtocol 是账号绑定的目标 inbound 协议
const DefaultProtocol = "vless"

// FindClientInbound 返回第一个协议匹配且带客户端列表的 inbound，
// 找不到时返回 nil
func (d *Document) FindClientInbound(protocol string) *Inbound {
	for _, in := range d.Inbounds {
		if in.Protocol == protocol && in.HasClients() {
			return in
		}
	}
	return nil
}

// HasClient 报告该 inbound 是否已有 email 对应的客户端
func (in *Inbound) HasClient(email string) bool {
	if !in.HasClients() {
		return false
	}
	for _, c := range in.Settings.Clients {
		if c.Email == email {
			return true
		}
	}
	return false
}

// AddClient 追加一条客户端记录
func (in *Inbound) AddClient(c Client) {
	in.Settings.Clients = append(in.Settings.Clients, c)
	in.Settings.hasClients = true
}

// FindClient 在所有 inbound 中查找 email 对应的客户端
func (d *Document) FindClient(email string) (*Client, bool) {
	for _, in := range d.Inbounds {
		if !in.HasClients() {
			continue
		}
		for i := range in.Settings.Clients {
			if in.Settings.Clients[i].Email == email {
				return &in.Settings.Clients[i], true
			}
		}
	}
	return nil, false
}

// RemoveClient 从所有 inbound 中删除 email 对应的客户端，
// 返回删除的条数
func (d *Document) RemoveClient(email string) int {
	removed := 0
	for _, in := range d.Inbounds {
		if !in.HasClients() {
			continue
		}
		kept := in.Settings.Clients[:0]
		for _, c := range in.Settings.Clients {
			if c.Email == email {
				removed++
				continue
			}
			kept = append(kept, c)
		}
		in.Settings.Clients = kept
	}
	return removed
}

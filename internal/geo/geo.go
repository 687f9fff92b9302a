// 包 geo：客户端 IP 的可选地理信息补充；多个本地库按顺序组成链，首个命中即返回
package geo

type Location struct {
	Country  string `json:"country,omitempty"`
	Region   string `json:"region,omitempty"`
	Province string `json:"province,omitempty"`
	City     string `json:"city,omitempty"`
	ISP      string `json:"isp,omitempty"`
	Source   string `json:"source"`
}

func (l Location) empty() bool {
	return l.Country == "" && l.Region == "" && l.Province == "" && l.City == "" && l.ISP == ""
}

type Lookuper interface {
	Lookup(ip string) (Location, bool)
}

// Chain：按顺序查询，跳过 nil 源
type Chain struct {
	list []Lookuper
}

func NewChain(list ...Lookuper) *Chain {
	var out []Lookuper
	for _, s := range list {
		if s != nil {
			out = append(out, s)
		}
	}
	return &Chain{list: out}
}

// Len：有效源数量，为 0 时调用方可直接不启用地理补充
func (c *Chain) Len() int { return len(c.list) }

func (c *Chain) Lookup(ip string) (Location, bool) {
	for _, s := range c.list {
		if l, ok := s.Lookup(ip); ok {
			return l, true
		}
	}
	return Location{}, false
}

package geo

import (
	"errors"
	"strings"

	"github.com/lionsoul2014/ip2region/binding/golang/service"
)

// ip2regionSearchers：每个协议的查询器池大小，查询时租借独占的 searcher
const ip2regionSearchers = 20

// IP2Region：v4/v6 xdb 检索，预加载向量索引，查询器池化后可并发调用
type IP2Region struct {
	svc *service.Ip2Region
}

// OpenIP2Region：v4Path / v6Path 任一为空则该协议不查询（返回未命中）
func OpenIP2Region(v4Path, v6Path string) (*IP2Region, error) {
	if v4Path == "" && v6Path == "" {
		return nil, errors.New("ip2region: no xdb path")
	}
	var v4, v6 *service.Config
	var err error
	if v4Path != "" {
		if v4, err = service.NewV4Config(service.VIndexCache, v4Path, ip2regionSearchers); err != nil {
			return nil, err
		}
	}
	if v6Path != "" {
		if v6, err = service.NewV6Config(service.VIndexCache, v6Path, ip2regionSearchers); err != nil {
			return nil, err
		}
	}
	svc, err := service.NewIp2Region(v4, v6)
	if err != nil {
		return nil, err
	}
	return &IP2Region{svc: svc}, nil
}

func (c *IP2Region) Lookup(ip string) (Location, bool) {
	if ip == "" {
		return Location{}, false
	}
	region, err := c.svc.SearchByStr(ip)
	if err != nil || region == "" {
		return Location{}, false
	}
	l := parseRegion(region)
	if l.empty() {
		return Location{}, false
	}
	return l, true
}

func (c *IP2Region) Close() error {
	c.svc.Close()
	return nil
}

// parseRegion：国家|区域|省份|城市|ISP，"0" 与 unknown 视为空
func parseRegion(s string) Location {
	parts := strings.Split(s, "|")
	l := Location{Source: "ip2region"}
	if len(parts) > 0 {
		l.Country = clean(parts[0])
	}
	if len(parts) > 1 {
		l.Region = clean(parts[1])
	}
	if len(parts) > 2 {
		l.Province = clean(parts[2])
	}
	if len(parts) > 3 {
		l.City = clean(parts[3])
	}
	if len(parts) > 4 {
		l.ISP = clean(parts[4])
	}
	return l
}

func clean(s string) string {
	s = strings.TrimSpace(s)
	if s == "0" || strings.EqualFold(s, "unknown") {
		return ""
	}
	return s
}

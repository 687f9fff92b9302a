package geo

import (
	"encoding/binary"
	"net"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/lionsoul2014/ip2region/binding/golang/xdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticLookuper map[string]Location

func (s staticLookuper) Lookup(ip string) (Location, bool) {
	l, ok := s[ip]
	return l, ok
}

func TestChain_FirstHitWins(t *testing.T) {
	a := staticLookuper{"1.1.1.1": {Country: "AU", Source: "a"}}
	b := staticLookuper{
		"1.1.1.1": {Country: "US", Source: "b"},
		"8.8.8.8": {Country: "US", Source: "b"},
	}
	c := NewChain(nil, a, nil, b)
	assert.Equal(t, 2, c.Len())

	l, ok := c.Lookup("1.1.1.1")
	assert.True(t, ok)
	assert.Equal(t, "a", l.Source)

	l, ok = c.Lookup("8.8.8.8")
	assert.True(t, ok)
	assert.Equal(t, "b", l.Source)

	_, ok = c.Lookup("9.9.9.9")
	assert.False(t, ok)
}

func TestChain_Empty(t *testing.T) {
	c := NewChain()
	assert.Equal(t, 0, c.Len())
	_, ok := c.Lookup("1.1.1.1")
	assert.False(t, ok)
}

func TestParseRegion(t *testing.T) {
	l := parseRegion("中国|0|广东省|深圳市|电信")
	assert.Equal(t, Location{Country: "中国", Province: "广东省", City: "深圳市", ISP: "电信", Source: "ip2region"}, l)

	assert.True(t, parseRegion("0|0|0|Unknown|0").empty())
}

func TestOpen_MissingFiles(t *testing.T) {
	dir := t.TempDir()
	_, err := OpenGeoIP(filepath.Join(dir, "missing.mmdb"))
	assert.Error(t, err)
	_, err = OpenIP2Region(filepath.Join(dir, "missing.xdb"), "")
	assert.Error(t, err)
	_, err = OpenIP2Region("", "")
	assert.Error(t, err)
}

type xdbSegment struct {
	start, end string
	region     string
}

// writeV4Xdb：按 xdb 2.0 结构写出 IPv4 库（头部 + 向量索引 + 区域数据 + 段索引）
func writeV4Xdb(t *testing.T, path string, segs []xdbSegment) {
	t.Helper()
	const vecLen = xdb.VectorIndexRows * xdb.VectorIndexCols * xdb.VectorIndexSize
	buf := make([]byte, xdb.HeaderInfoLength+vecLen)
	binary.LittleEndian.PutUint16(buf[0:], xdb.Structure20)
	binary.LittleEndian.PutUint16(buf[2:], uint16(xdb.VectorIndexPolicy))

	dataPtr := make([]uint32, len(segs))
	for i, s := range segs {
		dataPtr[i] = uint32(len(buf))
		buf = append(buf, s.region...)
	}

	const segSize = 14
	indexStart := uint32(len(buf))
	for i, s := range segs {
		sip, eip := net.ParseIP(s.start).To4(), net.ParseIP(s.end).To4()
		require.NotNil(t, sip)
		require.NotNil(t, eip)
		blk := make([]byte, segSize)
		binary.LittleEndian.PutUint32(blk[0:], binary.BigEndian.Uint32(sip))
		binary.LittleEndian.PutUint32(blk[4:], binary.BigEndian.Uint32(eip))
		binary.LittleEndian.PutUint16(blk[8:], uint16(len(s.region)))
		binary.LittleEndian.PutUint32(blk[10:], dataPtr[i])
		buf = append(buf, blk...)

		ptr := indexStart + uint32(i)*segSize
		for b0 := int(sip[0]); b0 <= int(eip[0]); b0++ {
			lo, hi := 0, 255
			if b0 == int(sip[0]) {
				lo = int(sip[1])
			}
			if b0 == int(eip[0]) {
				hi = int(eip[1])
			}
			for b1 := lo; b1 <= hi; b1++ {
				off := xdb.HeaderInfoLength + b0*xdb.VectorIndexCols*xdb.VectorIndexSize + b1*xdb.VectorIndexSize
				if binary.LittleEndian.Uint32(buf[off:]) == 0 {
					binary.LittleEndian.PutUint32(buf[off:], ptr)
				}
				binary.LittleEndian.PutUint32(buf[off+4:], ptr)
			}
		}
	}
	binary.LittleEndian.PutUint32(buf[8:], indexStart)
	binary.LittleEndian.PutUint32(buf[12:], uint32(len(buf))-segSize)
	require.NoError(t, os.WriteFile(path, buf, 0o644))
}

func openTestIP2Region(t *testing.T) *IP2Region {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ip2region_v4.xdb")
	writeV4Xdb(t, path, []xdbSegment{
		{"1.0.0.0", "1.255.255.255", "中国|0|广东省|深圳市|电信"},
		{"2.0.0.0", "2.255.255.255", "美国|0|加利福尼亚|0|0"},
	})
	c, err := OpenIP2Region(path, "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestIP2Region_Lookup(t *testing.T) {
	c := openTestIP2Region(t)

	l, ok := c.Lookup("1.2.3.4")
	require.True(t, ok)
	assert.Equal(t, Location{Country: "中国", Province: "广东省", City: "深圳市", ISP: "电信", Source: "ip2region"}, l)

	l, ok = c.Lookup("2.200.0.1")
	require.True(t, ok)
	assert.Equal(t, "美国", l.Country)
	assert.Empty(t, l.City)

	_, ok = c.Lookup("9.9.9.9")
	assert.False(t, ok)
	_, ok = c.Lookup("not-an-ip")
	assert.False(t, ok)
	_, ok = c.Lookup("")
	assert.False(t, ok)
	// 未配置 v6 库
	_, ok = c.Lookup("2001:db8::1")
	assert.False(t, ok)
}

func TestIP2Region_ConcurrentLookup(t *testing.T) {
	c := openTestIP2Region(t)

	var wrong, miss atomic.Int64
	var wg sync.WaitGroup
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				ip, want := "1.2.3.4", "深圳市"
				if (g+i)%2 == 1 {
					ip, want = "2.3.4.5", ""
				}
				l, ok := c.Lookup(ip)
				switch {
				case !ok:
					miss.Add(1)
				case l.City != want:
					wrong.Add(1)
				}
			}
		}(g)
	}
	wg.Wait()
	assert.Zero(t, miss.Load())
	assert.Zero(t, wrong.Load())
}

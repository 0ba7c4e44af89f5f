package cookiejar

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"time"
)

// safariEpoch cookie expiry/creation timestamps are stored as seconds since
// 2001-01-01, macOS's "Mac absolute time" epoch.
var safariEpoch = time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

// extractSafari parses Safari's proprietary Cookies.binarycookies format.
// No third-party parser for this format appears anywhere in the retrieved
// corpus, so this is a small hand-rolled binary reader; the layout below
// follows the format as reverse-engineered and widely documented by the
// forensics community (magic "cook", a page table, then per-page cookie
// records with offset-addressed string fields).
func extractSafari(cfg Config) ([]Cookie, error) {
	path := safariCookiesPath()
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil
	}
	return parseSafariCookies(data)
}

func parseSafariCookies(data []byte) ([]Cookie, error) {
	if len(data) < 8 || string(data[:4]) != "cook" {
		return nil, errors.New("cookiejar: not a binarycookies file")
	}
	numPages := binary.BigEndian.Uint32(data[4:8])
	offset := 8
	pageSizes := make([]uint32, numPages)
	for i := uint32(0); i < numPages; i++ {
		if offset+4 > len(data) {
			return nil, errors.New("cookiejar: truncated page size table")
		}
		pageSizes[i] = binary.BigEndian.Uint32(data[offset : offset+4])
		offset += 4
	}

	var out []Cookie
	for _, size := range pageSizes {
		if offset+int(size) > len(data) {
			break
		}
		page := data[offset : offset+int(size)]
		out = append(out, parseSafariPage(page)...)
		offset += int(size)
	}
	return out, nil
}

func parseSafariPage(page []byte) []Cookie {
	if len(page) < 8 {
		return nil
	}
	numCookies := binary.LittleEndian.Uint32(page[4:8])
	offsetsStart := 8
	var cookies []Cookie
	for i := uint32(0); i < numCookies; i++ {
		pos := offsetsStart + int(i)*4
		if pos+4 > len(page) {
			break
		}
		recOffset := binary.LittleEndian.Uint32(page[pos : pos+4])
		if int(recOffset) >= len(page) {
			continue
		}
		if c, ok := parseSafariCookieRecord(page[recOffset:]); ok {
			cookies = append(cookies, c)
		}
	}
	return cookies
}

func parseSafariCookieRecord(rec []byte) (Cookie, bool) {
	if len(rec) < 56 {
		return Cookie{}, false
	}
	flags := binary.LittleEndian.Uint32(rec[8:12])
	domainOff := binary.LittleEndian.Uint32(rec[16:20])
	nameOff := binary.LittleEndian.Uint32(rec[20:24])
	pathOff := binary.LittleEndian.Uint32(rec[24:28])
	valueOff := binary.LittleEndian.Uint32(rec[28:32])
	expiryBits := binary.LittleEndian.Uint64(rec[40:48])
	expirySecs := math.Float64frombits(expiryBits)

	readCString := func(off uint32) string {
		if int(off) >= len(rec) {
			return ""
		}
		rest := rec[off:]
		if i := bytes.IndexByte(rest, 0); i >= 0 {
			return string(rest[:i])
		}
		return string(rest)
	}

	domain := readCString(domainOff)
	name := readCString(nameOff)
	path := readCString(pathOff)
	value := readCString(valueOff)
	if domain == "" || name == "" {
		return Cookie{}, false
	}

	var expiresPtr *time.Time
	if expirySecs > 0 {
		t := safariEpoch.Add(time.Duration(expirySecs) * time.Second)
		expiresPtr = &t
	}

	return Cookie{
		Name:     name,
		Value:    value,
		Domain:   domain,
		Path:     path,
		Secure:   flags&0x1 != 0,
		HTTPOnly: flags&0x4 != 0,
		Expires:  expiresPtr,
	}, true
}

package usecase

import (
	"fmt"
	"net/netip"
	"strings"
)

// Allowlist разобранный список офисных адресов: точные адреса и диапазоны CIDR.
type Allowlist struct {
	addrs    []netip.Addr
	prefixes []netip.Prefix
}

// ParseAllowlist разбирает OFFICE_IPS ("1.2.3.4, 5.6.0.0/16"). Некорректная запись считается ошибкой конфигурации.
func ParseAllowlist(raw string) (Allowlist, error) {
	var list Allowlist
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				return Allowlist{}, fmt.Errorf("invalid office range %q: %w", entry, err)
			}
			// Проверяемые адреса приводятся к IPv4, поэтому диапазон ::ffff:a.b.c.d/N тоже.
			if prefix.Addr().Is4In6() {
				if prefix.Bits() < 96 {
					return Allowlist{}, fmt.Errorf("invalid office range %q: ipv4-mapped range must be /96 or longer", entry)
				}
				prefix = netip.PrefixFrom(prefix.Addr().Unmap(), prefix.Bits()-96)
			}
			list.prefixes = append(list.prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return Allowlist{}, fmt.Errorf("invalid office address %q: %w", entry, err)
		}
		list.addrs = append(list.addrs, addr.Unmap())
	}
	return list, nil
}

// Len количество записей в списке.
func (l Allowlist) Len() int {
	return len(l.addrs) + len(l.prefixes)
}

// Allows сообщает, относится ли адрес к офисной сети.
// Пустой или неразбираемый адрес никогда не проходит.
func (l Allowlist) Allows(origin string) bool {
	origin = strings.TrimSpace(origin)
	if origin == "" {
		return false
	}
	addr, err := netip.ParseAddr(origin)
	if err != nil {
		return false
	}
	addr = addr.Unmap()

	for _, a := range l.addrs {
		if a == addr {
			return true
		}
	}
	for _, p := range l.prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

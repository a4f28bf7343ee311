// Package numeral spells out integers as Korean Sino-Korean numerals.
//
// Numbers are grouped by four digits (만, 억, 조, 경, ...) rather than by thousands.
package numeral

import (
	"errors"
	"math/big"
	"strconv"
	"strings"
)

const (
	zeroWord  = "영"
	minusWord = "마이너스 "
)

// ErrOutOfRange is returned by Big for magnitudes of 10^52 and above, which have
// no group word.
var ErrOutOfRange = errors.New("numeral: value has no Korean group word")

var (
	digitWords = [10]string{"", "일", "이", "삼", "사", "오", "육", "칠", "팔", "구"}
	placeWords = [4]string{"", "십", "백", "천"}
	groupWords = [...]string{"", "만", "억", "조", "경", "해", "자", "양", "구", "간", "정", "재", "극"}
)

// Korean renders n, e.g. 6738 -> "육천칠백삼십팔", 10000 -> "일만".
// Every int64, math.MinInt64 included, is in range.
func Korean(n int64) string {
	s, _ := Big(big.NewInt(n))
	return s
}

// Big renders an arbitrary-precision integer the same way Korean does.
func Big(n *big.Int) (string, error) {
	switch n.Sign() {
	case 0:
		return zeroWord, nil
	case -1:
		s, err := fromDigits(new(big.Int).Abs(n).String())
		if err != nil {
			return "", err
		}
		return minusWord + s, nil
	}
	return fromDigits(n.String())
}

// fromDigits spells a positive decimal digit string, four digits at a time from
// the right. All-zero groups contribute neither digits nor group word.
func fromDigits(digits string) (string, error) {
	if (len(digits)+3)/4 > len(groupWords) {
		return "", ErrOutOfRange
	}

	var groups []string
	for idx, end := 0, len(digits); end > 0; idx, end = idx+1, end-4 {
		part, _ := strconv.Atoi(digits[max(end-4, 0):end])
		if part > 0 {
			groups = append(groups, Group(part)+groupWords[idx])
		}
	}

	var b strings.Builder
	for i := len(groups) - 1; i >= 0; i-- {
		b.WriteString(groups[i])
	}
	return b.String(), nil
}

// Group renders a single four-digit group (0..9999) without its group word.
// It returns "" for 0 and for values outside the range.
func Group(n int) string {
	if n <= 0 || n > 9999 {
		return ""
	}

	var b strings.Builder
	for place := 3; place >= 0; place-- {
		digit := n / pow10[place] % 10
		if digit == 0 {
			continue
		}
		// 일 is dropped before 십, 백 and 천.
		if digit == 1 && place > 0 {
			b.WriteString(placeWords[place])
			continue
		}
		b.WriteString(digitWords[digit])
		b.WriteString(placeWords[place])
	}
	return b.String()
}

var pow10 = [4]int{1, 10, 100, 1000}

// Package domain はstocksフィーチャーのエラー型を定義します。
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRateLimited は上流プロバイダーのクォータ枯渇を示すセンチネルエラーです。
var ErrRateLimited = errors.New("upstream rate limit reached")

// ParseError は上流ペイロードが期待スキーマに一致しなかったことを示します。
// Field/Value には違反した箇所を設定します（特定できない場合は空）。
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("parse %s %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("parse upstream payload: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// FetchErrorKind は1銘柄のフェッチ失敗の分類です。
type FetchErrorKind string

const (
	// FetchTransport はネットワーク障害・非2xx応答・タイムアウトです。
	FetchTransport FetchErrorKind = "transport"
	// FetchRateLimited は上流のレートリミット通知です。
	FetchRateLimited FetchErrorKind = "rate_limited"
	// FetchParse は上流ペイロードのスキーマ違反です。
	FetchParse FetchErrorKind = "parse"
)

// FetchError は1銘柄のフェッチ失敗を型付きで表します。
// フェッチャーはすべての失敗経路でこの型を返し、未分類のエラーを
// 呼び出し側へ漏らしません。
type FetchError struct {
	Kind   FetchErrorKind
	Symbol string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %s: %v", e.Symbol, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// UpstreamUnavailableError はリクエストされた全銘柄が失敗したことを示します。
// 集約コアが呼び出し側へ返す唯一のエラーで、診断用に銘柄ごとの失敗を保持します。
type UpstreamUnavailableError struct {
	Failures []*FetchError
}

func (e *UpstreamUnavailableError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s (%s)", f.Symbol, f.Kind))
	}
	return "all requested symbols failed upstream: " + strings.Join(parts, ", ")
}

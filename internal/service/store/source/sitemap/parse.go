package sitemap

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	apperrors "github.com/darkkaiser/affiliate-store-server/internal/pkg/errors"
)

var (
	// ErrCompressedSitemap gzip 압축된 사이트맵을 받았을 때 반환하는 에러입니다.
	// 압축 사이트맵은 지원하지 않으며, 빈 결과로 위장되어서는 안 됩니다.
	ErrCompressedSitemap = apperrors.New(apperrors.ParsingFailed, "압축된(.gz) 사이트맵은 지원하지 않습니다. 압축 해제된 XML 사이트맵 URL을 설정하세요")

	// ErrNoEntries 사이트맵에서 loc 엔트리를 하나도 찾지 못했을 때 반환하는 에러입니다.
	ErrNoEntries = apperrors.New(apperrors.ParsingFailed, "사이트맵에 상품 URL 엔트리가 없습니다")

	// ErrNotSitemap 본문이 사이트맵 XML로 인식되지 않을 때 반환하는 에러입니다.
	ErrNotSitemap = apperrors.New(apperrors.ParsingFailed, "사이트맵 XML 형식이 아닌 응답입니다")
)

// ParseLocs 사이트맵 XML 본문에서 모든 <loc> 엔트리를 추출합니다.
//
//   - gzip 압축 본문은 즉시 에러로 처리합니다. (깨진 텍스트가 상품명으로 흘러가는 것 방지)
//   - 느슨한 HTML 파서(goquery)를 사용하므로 네임스페이스 선언이 어긋나거나
//     일부가 잘린 사이트맵도 엔트리를 건질 수 있습니다.
//   - 엔트리가 0개이면 ErrNoEntries를 반환합니다. (성공한 빈 결과는 존재하지 않음)
func ParseLocs(xmlText string) ([]string, error) {
	if looksGzipped(xmlText) {
		return nil, ErrCompressedSitemap
	}
	if !looksLikeSitemap(xmlText) {
		return nil, ErrNotSitemap
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(xmlText))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ParsingFailed, "사이트맵 XML 파싱이 실패하였습니다")
	}

	var locs []string
	doc.Find("loc").Each(func(_ int, sel *goquery.Selection) {
		loc := strings.TrimSpace(sel.Text())
		if loc != "" {
			locs = append(locs, loc)
		}
	})

	if len(locs) == 0 {
		return nil, ErrNoEntries
	}

	return locs, nil
}

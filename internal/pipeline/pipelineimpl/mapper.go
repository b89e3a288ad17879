package pipelineimpl

import (
	"github.com/orgball2608/twitter-parser-telegram-bot/internal/crawler/crawlerimpl"
	"github.com/orgball2608/twitter-parser-telegram-bot/internal/domain"
	"github.com/samber/lo"
)

// CategoryMapping joins an account to its category.
type CategoryMapping struct {
	AccountID  int
	CategoryID int
}

// CategoryMapper resolves a handle to the (account, category) pair a
// persisted tweet must carry. Built once per run from the account directory
// and the account-category join, merged by account id; accounts missing from
// either source are absent from the mapper.
type CategoryMapper struct {
	byHandle map[string]CategoryMapping
}

func BuildCategoryMapper(accounts []domain.TrackedAccount, pairs []domain.AccountCategory) *CategoryMapper {
	categoryByAccountID := lo.Associate(pairs, func(p domain.AccountCategory) (int, int) {
		return p.AccountID, p.CategoryID
	})

	byHandle := make(map[string]CategoryMapping, len(accounts))
	for _, acct := range accounts {
		categoryID, ok := categoryByAccountID[acct.ID]
		if !ok {
			continue
		}
		byHandle[crawlerimpl.NormalizeHandle(acct.Username)] = CategoryMapping{
			AccountID:  acct.ID,
			CategoryID: categoryID,
		}
	}

	return &CategoryMapper{byHandle: byHandle}
}

func (m *CategoryMapper) Resolve(handle string) (CategoryMapping, bool) {
	mapping, ok := m.byHandle[crawlerimpl.NormalizeHandle(handle)]
	return mapping, ok
}

func (m *CategoryMapper) Size() int {
	return len(m.byHandle)
}

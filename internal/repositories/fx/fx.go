package fx

import (
	"github.com/orgball2608/twitter-parser-telegram-bot/internal/repositories/account"
	"github.com/orgball2608/twitter-parser-telegram-bot/internal/repositories/category"
	"github.com/orgball2608/twitter-parser-telegram-bot/internal/repositories/tweet"
	"go.uber.org/fx"
)

var Module = fx.Options(
	tweet.Module,
	account.Module,
	category.Module,
)

package stdlib

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/goodsign/monday"
	"github.com/minqlang/minq/pkg/minq/evaluator"
)

var mondayLocales = map[string]monday.Locale{
	"en":    monday.LocaleEnUS,
	"en_us": monday.LocaleEnUS,
	"en_gb": monday.LocaleEnGB,
	"de":    monday.LocaleDeDE,
	"de_de": monday.LocaleDeDE,
	"fr":    monday.LocaleFrFR,
	"fr_fr": monday.LocaleFrFR,
	"fr_ca": monday.LocaleFrCA,
	"es":    monday.LocaleEsES,
	"es_es": monday.LocaleEsES,
	"it":    monday.LocaleItIT,
	"it_it": monday.LocaleItIT,
	"pt":    monday.LocalePtPT,
	"pt_pt": monday.LocalePtPT,
	"pt_br": monday.LocalePtBR,
	"nl":    monday.LocaleNlNL,
	"nl_nl": monday.LocaleNlNL,
	"ru":    monday.LocaleRuRU,
	"ru_ru": monday.LocaleRuRU,
	"pl":    monday.LocalePlPL,
	"pl_pl": monday.LocalePlPL,
	"sv":    monday.LocaleSvSE,
	"sv_se": monday.LocaleSvSE,
	"ja":    monday.LocaleJaJP,
	"ja_jp": monday.LocaleJaJP,
	"zh":    monday.LocaleZhCN,
	"zh_cn": monday.LocaleZhCN,
	"ko":    monday.LocaleKoKR,
	"ko_kr": monday.LocaleKoKR,
	"tr":    monday.LocaleTrTR,
	"tr_tr": monday.LocaleTrTR,
	"uk":    monday.LocaleUkUA,
	"uk_ua": monday.LocaleUkUA,
}

// lookupLocale accepts "fr_FR", "fr-FR" or "fr".
func lookupLocale(name string) (monday.Locale, bool) {
	loc, ok := mondayLocales[strings.ToLower(strings.ReplaceAll(name, "-", "_"))]
	return loc, ok
}

func dateModule() *evaluator.Module {
	m := evaluator.NewModule("date")

	m.Define("now", func(args []evaluator.Object, env *evaluator.Environment) evaluator.Object {
		if len(args) != 0 {
			return evaluator.InvalidArgs(env, "now")
		}
		return num(float64(time.Now().UnixMilli()))
	})

	m.Define("parse", func(args []evaluator.Object, env *evaluator.Environment) evaluator.Object {
		if !evaluator.ValidateArgs(args, oneString()) {
			return evaluator.InvalidArgs(env, "parse")
		}
		t, err := dateparse.ParseLocal(stringArg(args, 0))
		if err != nil {
			return fail(env, "FORMAT-0001", "parse", err)
		}
		return num(float64(t.UnixMilli()))
	})

	m.Define("format", func(args []evaluator.Object, env *evaluator.Environment) evaluator.Object {
		ok := evaluator.ValidateArgs(args, numbers(1), twoStrings()) ||
			evaluator.ValidateArgs(args, numbers(1), oneString())
		if !ok {
			return evaluator.InvalidArgs(env, "format")
		}
		var locale monday.Locale = monday.LocaleEnUS
		if len(args) == 3 {
			loc, found := lookupLocale(stringArg(args, 2))
			if !found {
				return fail(env, "FORMAT-0001", "format", fmt.Errorf("unsupported locale %q", stringArg(args, 2)))
			}
			locale = loc
		}
		t := time.UnixMilli(int64(numberArg(args, 0)))
		return str(monday.Format(t, stringArg(args, 1), locale))
	})

	return m
}

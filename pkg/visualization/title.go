// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package visualization

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TitleCase turns a field name such as "totalSales" or "total_sales" into a
// display label ("Total Sales"). Every capital letter starts a new word, so
// "pageURL" becomes "Page U R L".
func TitleCase(s string) string {
	var spaced strings.Builder
	for _, r := range s {
		switch {
		case r == '_' || r == '-':
			spaced.WriteRune(' ')
		case unicode.IsUpper(r):
			spaced.WriteRune(' ')
			spaced.WriteRune(r)
		default:
			spaced.WriteRune(r)
		}
	}

	// Casers are stateful, so each call gets its own.
	caser := cases.Title(language.English)
	words := strings.Fields(spaced.String())
	for i, word := range words {
		words[i] = caser.String(word)
	}
	return strings.Join(words, " ")
}

package commands

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"

	"github.com/keshon/commandbot/internal/command"
)

const defaultRoll = "1d6"

var (
	tokenRegex = regexp.MustCompile(`(?i)(\d*d\d+|\d+|[+\-*/])`)
	diceRegex  = regexp.MustCompile(`(?i)^(\d*)d(\d+)$`)
	validOps   = map[string]bool{"+": true, "-": true, "*": true, "/": true}
)

type term struct {
	value int
	desc  string
	op    string
}

// rollHandler rolls a dice formula such as `2d6+1d4*2-3`. intn defaults to math/rand.
func rollHandler(intn func(n int) int) command.Handler {
	if intn == nil {
		intn = rand.IntN
	}
	return func(ctx context.Context, inv *command.Invocation) error {
		formula := strings.Join(inv.Args, "")
		if formula == "" {
			formula = defaultRoll
		}

		total, pretty, err := evalFormula(formula, intn)
		if err != nil {
			return inv.Reply(ctx, inv.T("commands.roll.invalid", formula))
		}
		return inv.Reply(ctx, inv.T("commands.roll.result", inv.Event.Mention(), pretty, total))
	}
}

// evalFormula evaluates dice terms and integers joined by + - * /. Multiplication and
// division bind tighter than addition and subtraction.
func evalFormula(formula string, intn func(n int) int) (int, string, error) {
	if strings.Join(tokenRegex.FindAllString(formula, -1), "") != formula {
		return 0, "", fmt.Errorf("unexpected characters in %q", formula)
	}
	tokens := tokenRegex.FindAllString(formula, -1)
	if len(tokens) == 0 {
		return 0, "", errors.New("empty formula")
	}

	var terms []term
	currentOp := "+"
	expectOperand := true
	for _, token := range tokens {
		if validOps[token] {
			if expectOperand && len(terms) > 0 {
				return 0, "", errors.New("two operators in a row")
			}
			currentOp = token
			expectOperand = true
			continue
		}
		if !expectOperand {
			return 0, "", errors.New("missing operator")
		}

		val, desc, err := evaluateToken(token, intn)
		if err != nil {
			return 0, "", fmt.Errorf("evaluate %s: %w", token, err)
		}
		terms = append(terms, term{value: val, desc: desc, op: currentOp})
		expectOperand = false
	}
	if expectOperand {
		return 0, "", errors.New("formula ends with an operator")
	}

	// * and / first
	var merged []term
	for _, t := range terms {
		if t.op != "*" && t.op != "/" {
			merged = append(merged, t)
			continue
		}
		if len(merged) == 0 {
			return 0, "", errors.New("operator without left operand")
		}
		prev := merged[len(merged)-1]
		merged = merged[:len(merged)-1]

		var v int
		if t.op == "*" {
			v = prev.value * t.value
		} else {
			if t.value == 0 {
				return 0, "", errors.New("division by zero")
			}
			v = prev.value / t.value
		}
		merged = append(merged, term{
			value: v,
			desc:  fmt.Sprintf("%s %s %s", prev.desc, t.op, t.desc),
			op:    prev.op,
		})
	}

	// + and -
	total := 0
	var details []string
	for _, t := range merged {
		if len(details) > 0 {
			details = append(details, fmt.Sprintf(" %s ", t.op))
		}
		details = append(details, t.desc)

		switch t.op {
		case "+":
			total += t.value
		case "-":
			total -= t.value
		}
	}
	return total, strings.Join(details, ""), nil
}

func evaluateToken(token string, intn func(n int) int) (int, string, error) {
	if m := diceRegex.FindStringSubmatch(token); m != nil {
		count := 1
		if m[1] != "" {
			n, err := strconv.Atoi(m[1])
			if err != nil || n < 1 {
				return 0, "", errors.New("invalid dice count")
			}
			count = n
		}

		sides, err := strconv.Atoi(m[2])
		if err != nil || sides < 2 {
			return 0, "", errors.New("invalid dice sides")
		}
		if count > 100 || sides > 1000 {
			return 0, "", errors.New("too big, max 100 dice with 1000 sides")
		}

		var sum int
		rolls := make([]string, 0, count)
		for range count {
			r := intn(sides) + 1
			sum += r
			rolls = append(rolls, strconv.Itoa(r))
		}
		return sum, fmt.Sprintf("`%s` [%s]", strings.ToLower(token), strings.Join(rolls, ", ")), nil
	}

	num, err := strconv.Atoi(token)
	if err != nil {
		return 0, "", fmt.Errorf("invalid number %q", token)
	}
	return num, strconv.Itoa(num), nil
}

package stdlib

import (
	"errors"

	"github.com/minqlang/minq/pkg/minq/evaluator"
	"golang.org/x/crypto/bcrypt"
)

func cryptoModule() *evaluator.Module {
	m := evaluator.NewModule("crypto")

	m.Define("hash_password", func(args []evaluator.Object, env *evaluator.Environment) evaluator.Object {
		if !evaluator.ValidateArgs(args, oneString()) {
			return evaluator.InvalidArgs(env, "hash_password")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(stringArg(args, 0)), bcrypt.DefaultCost)
		if err != nil {
			return fail(env, "FORMAT-0001", "hash_password", err)
		}
		return str(string(hash))
	})

	m.Define("check_password", func(args []evaluator.Object, env *evaluator.Environment) evaluator.Object {
		if !evaluator.ValidateArgs(args, twoStrings()) {
			return evaluator.InvalidArgs(env, "check_password")
		}
		err := bcrypt.CompareHashAndPassword([]byte(stringArg(args, 0)), []byte(stringArg(args, 1)))
		switch {
		case err == nil:
			return evaluator.TRUE
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return evaluator.FALSE
		}
		return fail(env, "FORMAT-0001", "check_password", err)
	})

	return m
}

/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package config

import (
	"fmt"

	libval "github.com/go-playground/validator/v10"

	liberr "github.com/nabbar/sockd/errors"
)

const (
	ErrorParamEmpty liberr.CodeError = iota + liberr.MinPkgConfig
	ErrorValidatorError
	ErrorLoadFile
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = liberr.ExistInMapMessage(ErrorParamEmpty)
	liberr.RegisterIdFctMessage(ErrorParamEmpty, getMessage)
}

func getMessage(code liberr.CodeError) (message string) {
	switch code {
	case liberr.UnknownError:
		return ""
	case ErrorParamEmpty:
		return "no configuration source was given"
	case ErrorValidatorError:
		return "configuration is not valid"
	case ErrorLoadFile:
		return "cannot load configuration file"
	}

	return ""
}

// Validate runs struct-tag validation over cfg and wraps every failing
// field into a single ErrorValidatorError chain.
func validate(cfg interface{}) liberr.Error {
	e := ErrorValidatorError.Error(nil)

	if err := libval.New().Struct(cfg); err != nil {
		if er, ok := err.(*libval.InvalidValidationError); ok {
			e.Add(er)
		} else if vErrs, ok := err.(libval.ValidationErrors); ok {
			for _, er := range vErrs {
				e.Add(fmt.Errorf("config field '%s' is not validated by constraint '%s'", er.Namespace(), er.ActualTag()))
			}
		} else {
			e.Add(err)
		}
	}

	if !e.HasParent() {
		return nil
	}

	return e
}

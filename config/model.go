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
	"reflect"

	libmap "github.com/go-viper/mapstructure/v2"
	libvpr "github.com/spf13/viper"

	"github.com/nabbar/sockd/duration"
	"github.com/nabbar/sockd/file/perm"
)

func durationDecodeHook() libmap.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String {
			return data, nil
		}
		s, ok := data.(string)
		if !ok {
			return data, nil
		}
		if to != reflect.TypeOf(duration.Duration(0)) {
			return data, nil
		}
		return duration.Parse(s)
	}
}

func load(v *libvpr.Viper) (*Options, error) {
	if v == nil {
		return nil, ErrorParamEmpty.Error(nil)
	}

	o := &Options{}

	dec := libvpr.DecodeHook(libmap.ComposeDecodeHookFunc(
		libmap.StringToTimeDurationHookFunc(),
		perm.ViperDecoderHook(),
		durationDecodeHook(),
	))

	if e := v.Unmarshal(o, dec); e != nil {
		return nil, ErrorLoadFile.Error(e)
	}

	if err := o.Validate(); err != nil {
		return nil, err
	}

	return o, nil
}

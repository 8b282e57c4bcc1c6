// Copyright 2022 Sodap Lab
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rderr

import (
	"context"
	"fmt"
)

// Most of the candidate extraction code runs in tight per-join-line
// loops that do not thread a context through. These constructors
// exist for those paths.

func NewInternalErrorNoCtx(msg string, args ...any) *Error {
	return NewInternalError(context.Background(), msg, args...)
}

func NewNYINoCtx(msg string, args ...any) *Error {
	return NewNYI(context.Background(), msg, args...)
}

func NewBadConfigNoCtx(msg string, args ...any) *Error {
	return NewBadConfig(context.Background(), msg, args...)
}

func NewInvalidInputNoCtx(msg string, args ...any) *Error {
	return NewInvalidInput(context.Background(), msg, args...)
}

func NewMalformedConditionCodeNoCtx(msg string, args ...any) *Error {
	return NewMalformedConditionCode(context.Background(), msg, args...)
}

func NewUnsupportedSplitStrategyNoCtx(strategy int) *Error {
	return NewUnsupportedSplitStrategy(context.Background(), strategy)
}

func NewMissingFrequencyFilterNoCtx(code int32) *Error {
	return NewMissingFrequencyFilter(context.Background(), code)
}

func NewShortRecordNoCtx(msg string, args ...any) *Error {
	return NewShortRecord(context.Background(), msg, args...)
}

func NewInvalidStateNoCtx(msg string, args ...any) *Error {
	xmsg := fmt.Sprintf(msg, args...)
	return NewInvalidState(context.Background(), xmsg)
}

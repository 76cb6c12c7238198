// Copyright 2024 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2024 Institute of the Czech National Corpus,
//                Faculty of Arts, Charles University
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package openapi

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"semctx/cnf"

	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
)

const (
	documentPath = "/openapi"
)

func findHTTPProtocol(req *http.Request) string {
	if prot := req.Header.Get("x-forwarded-proto"); prot != "" {
		return prot
	}
	if req.TLS != nil {
		return "https"
	}
	return "http"
}

func findHTTPServer(req *http.Request) string {
	if serv := req.Header.Get("x-forwarded-host"); serv != "" {
		return serv
	}
	return req.Host
}

func findPath(req *http.Request) string {
	if path := req.Header.Get("x-original-path"); path != "" {
		return path
	}
	return req.URL.Path
}

// findCurrentPublicURL returns the configured public URL or,
// if none is set, derives it from the request (respecting
// common proxy headers).
func findCurrentPublicURL(conf *cnf.Conf, req *http.Request) (string, error) {
	if conf.PublicURL != "" {
		return conf.PublicURL, nil
	}
	path := strings.TrimSuffix(findPath(req), documentPath)
	ans, err := url.JoinPath(
		fmt.Sprintf("%s://%s", findHTTPProtocol(req), findHTTPServer(req)), path)
	if err != nil {
		return "", fmt.Errorf("cannot find current public url: %w", err)
	}
	return ans, nil
}

func MkHandleRequest(conf *cnf.Conf, ver string) func(ctx *gin.Context) {
	return func(ctx *gin.Context) {
		publicURL, err := findCurrentPublicURL(conf, ctx.Request)
		if err != nil {
			uniresp.RespondWithErrorJSON(ctx, err, http.StatusInternalServerError)
			return
		}
		uniresp.WriteJSONResponse(ctx.Writer, NewResponse(ver, publicURL))
	}
}

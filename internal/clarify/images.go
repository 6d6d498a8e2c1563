// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package clarify

import "fmt"

// clarifyAccounts maps a region to the account hosting the
// sagemaker-clarify-processing image there. The image is region-local; a
// processing job must use the registry of its own region.
var clarifyAccounts = map[string]string{
	"af-south-1":     "811711786498",
	"ap-east-1":      "098760798382",
	"ap-northeast-1": "377024640650",
	"ap-northeast-2": "263625296855",
	"ap-northeast-3": "912233562940",
	"ap-south-1":     "452307495513",
	"ap-southeast-1": "834264404009",
	"ap-southeast-2": "007051062584",
	"ca-central-1":   "675030665977",
	"eu-central-1":   "017069133835",
	"eu-north-1":     "763603941244",
	"eu-south-1":     "638885417683",
	"eu-west-1":      "131013547314",
	"eu-west-2":      "440796970383",
	"eu-west-3":      "341593696636",
	"me-south-1":     "835444307964",
	"sa-east-1":      "520018980103",
	"us-east-1":      "205585389593",
	"us-east-2":      "211330385671",
	"us-west-1":      "740489534195",
	"us-west-2":      "306415355426",
}

// ImageURI returns the Clarify processing image URI for the region.
func ImageURI(region string) (string, error) {
	account, ok := clarifyAccounts[region]
	if !ok {
		return "", fmt.Errorf("no clarify processing image registered for region %s", region)
	}
	return fmt.Sprintf("%s.dkr.ecr.%s.amazonaws.com/sagemaker-clarify-processing:1.0", account, region), nil
}

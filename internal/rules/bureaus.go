package rules

import "github.com/joseph-ayodele/credit-audit/constants"

var bureauDirectory = []BureauContact{
	{
		Bureau:  constants.Equifax,
		Name:    "Equifax Information Services LLC",
		Address: "P.O. Box 740256, Atlanta, GA 30374-0256",
		Phone:   "1-800-685-1111",
	},
	{
		Bureau:  constants.Experian,
		Name:    "Experian",
		Address: "P.O. Box 4500, Allen, TX 75013",
		Phone:   "1-888-397-3742",
	},
	{
		Bureau:  constants.TransUnion,
		Name:    "TransUnion LLC",
		Address: "P.O. Box 2000, Chester, PA 19016",
		Phone:   "1-800-916-8800",
	},
}

package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Declaration files and type references
	DclInfo                   Code = 2000
	DclMalformedFile          Code = 2001
	DclUnknownType            Code = 2002
	DclTypeArgumentCount      Code = 2003
	DclDuplicateBaseType      Code = 2004
	DclDuplicateTypeParameter Code = 2005
	DclMalformedTypeRef       Code = 2006
	DclUnknownMember          Code = 2007

	// Base type binding
	BndInfo                             Code = 3000
	BndCyclicInheritance                Code = 3001
	BndDuplicateSupertype               Code = 3002
	BndIllegalSupertype                 Code = 3003
	BndSupertypeNotInterface            Code = 3004
	BndDuplicateMemberVariable          Code = 3005
	BndMultipleConstructors             Code = 3006
	BndMultipleDestructors              Code = 3007
	BndEntryNotAllowedOnInterface       Code = 3008
	BndTypeMismatch                     Code = 3009
	BndInconsistentDiamondTypeArguments Code = 3018

	// Overrides and overload sets
	BndDoesNotOverride                Code = 3010
	BndAmbiguousOverride              Code = 3011
	BndUndeclaredOverride             Code = 3012
	BndIncompatibleReturnOnOverride   Code = 3013
	BndStaticFunctionDeclaredOverride Code = 3014
	BndOverrideDropsNothrow           Code = 3015
	BndOverrideAccessorKindMismatch   Code = 3016
	BndOverrideRestrictsVisibility    Code = 3017
	BndInconsistentReceiverPresence   Code = 3020
	BndOverloadsNotDisjoint           Code = 3021
	BndNonVirtualReceiver             Code = 3022
	BndMissingFunctionBody            Code = 3023
	BndExternalMemberFunction         Code = 3024

	// Accessors
	BndAccessorContractViolated          Code = 3030
	BndMultipleWriteAccessors            Code = 3031
	BndAccessorTypeMismatch              Code = 3032
	BndAccessorClashesWithMemberVariable Code = 3033

	// Mixins
	BndMixinNotAllowed              Code = 3040
	BndIllegalMixinRepetition       Code = 3041
	BndUnusedMixin                  Code = 3042
	BndAbstractFunctionNotImplement Code = 3043

	// Construction and destruction
	BndMemberVariableNotInitialized   Code = 3050
	BndDecoratedMemberNotCtorInit     Code = 3051
	BndNothrowViolation               Code = 3052
	BndConstructorDeclaredNothrow     Code = 3053
	BndMemberVariableInitializedTwice Code = 3054

	// Lints
	LntInfo                   Code = 4000
	LntUnconventionalTypeName Code = 4001

	// Project configuration
	PrjInfo            Code = 5000
	PrjInvalidManifest Code = 5001

	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:                          "Unknown error",
		DclInfo:                              "Declaration information",
		DclMalformedFile:                     "Malformed declaration file",
		DclUnknownType:                       "Unknown type",
		DclTypeArgumentCount:                 "Wrong number of type arguments",
		DclDuplicateBaseType:                 "Duplicate base type",
		DclDuplicateTypeParameter:            "Duplicate type parameter",
		DclMalformedTypeRef:                  "Malformed type reference",
		DclUnknownMember:                     "Unknown member variable",
		BndInfo:                              "Binding information",
		BndCyclicInheritance:                 "Cyclic inheritance",
		BndDuplicateSupertype:                "Duplicate supertype",
		BndIllegalSupertype:                  "Can only inherit from interfaces",
		BndSupertypeNotInterface:             "Supertype is not an interface",
		BndDuplicateMemberVariable:           "Duplicate member variable",
		BndMultipleConstructors:              "Multiple constructors",
		BndMultipleDestructors:               "Multiple destructors",
		BndEntryNotAllowedOnInterface:        "Entry not allowed on interface",
		BndTypeMismatch:                      "Type mismatch",
		BndInconsistentDiamondTypeArguments:  "Inconsistent type arguments on diamond inheritance",
		BndDoesNotOverride:                   "Function does not override",
		BndAmbiguousOverride:                 "Ambiguous override",
		BndUndeclaredOverride:                "Undeclared override",
		BndIncompatibleReturnOnOverride:      "Incompatible return type on override",
		BndStaticFunctionDeclaredOverride:    "Static function declared override",
		BndOverrideDropsNothrow:              "Override drops nothrow",
		BndOverrideAccessorKindMismatch:      "Override changes accessor kind",
		BndOverrideRestrictsVisibility:       "Override restricts visibility",
		BndInconsistentReceiverPresence:      "Inconsistent receiver presence in overload set",
		BndOverloadsNotDisjoint:              "Overloads are not disjoint",
		BndNonVirtualReceiver:                "Receiver is not of the declaring type",
		BndMissingFunctionBody:               "Member function without body",
		BndExternalMemberFunction:            "External member function",
		BndAccessorContractViolated:          "Accessor contract violated",
		BndMultipleWriteAccessors:            "Multiple write accessors",
		BndAccessorTypeMismatch:              "Read and write accessor types differ",
		BndAccessorClashesWithMemberVariable: "Accessor clashes with member variable",
		BndMixinNotAllowed:                   "Mixin not allowed",
		BndIllegalMixinRepetition:            "Illegal mixin repetition",
		BndUnusedMixin:                       "Unused mixin",
		BndAbstractFunctionNotImplement:      "Abstract inherited function not implemented",
		BndMemberVariableNotInitialized:      "Member variable not initialized",
		BndDecoratedMemberNotCtorInit:        "Decorated member variable must be constructor-initialized",
		BndNothrowViolation:                  "Nothrow violation",
		BndConstructorDeclaredNothrow:        "Constructor declared nothrow",
		BndMemberVariableInitializedTwice:    "Member variable initialized twice",
		LntInfo:                              "Lint information",
		LntUnconventionalTypeName:            "Unconventional type name",
		PrjInfo:                              "Project information",
		PrjInvalidManifest:                   "Invalid project manifest",
		ObsInfo:                              "Observability information",
		ObsTimings:                           "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("DCL%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("BND%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("LNT%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
